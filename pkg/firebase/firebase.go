package firebase

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// SetUpFireBase initialises the firebase app from a service-account file
// and returns the FCM messaging client used by the push sender.
func SetUpFireBase(credentialsFile string) (*firebase.App, *messaging.Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, nil, err
	}

	return app, client, nil
}
