package incident

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"incident-service/helper"
	"incident-service/internal/directory"
	"incident-service/internal/sequence"
)

// Notifier is the dispatch surface the lifecycle uses. All calls are
// best-effort; a failed broadcast never fails the state change.
type Notifier interface {
	IncidentCreated(ctx context.Context, incidentID string, payload interface{})
	IncidentUpdated(ctx context.Context, incidentID string, payload interface{})
	IncidentClosed(ctx context.Context, incidentID string, payload interface{})
	IncidentAcknowledged(ctx context.Context, incidentID string, payload interface{})
}

type Service interface {
	Create(ctx context.Context, req *CreateIncidentRequest, creatorID string) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, filter ListFilter) ([]*Response, error)
	Update(ctx context.Context, id string, req *UpdateIncidentRequest) (*Response, error)
	Close(ctx context.Context, id, userID string) (*Response, error)
	Acknowledge(ctx context.Context, incidentID, userID string, req *AcknowledgeRequest) (*AcknowledgementResponse, error)
	ListAcknowledgements(ctx context.Context, incidentID string) ([]AcknowledgementResponse, error)
}

type incidentService struct {
	repo     Repository
	seq      sequence.Allocator
	dir      directory.Directory
	notifier Notifier
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewIncidentService(repo Repository, seq sequence.Allocator, dir directory.Directory, notifier Notifier, logger *zap.SugaredLogger) Service {
	return &incidentService{
		repo:     repo,
		seq:      seq,
		dir:      dir,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *incidentService) Create(ctx context.Context, req *CreateIncidentRequest, creatorID string) (*Response, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator is required", helper.ErrValidationFailed)
	}
	if req.IncidentTypeID == "" || req.UnitID == "" || req.MessageID == "" {
		return nil, fmt.Errorf("%w: incident_type_id, unit_id and message_id are required", helper.ErrValidationFailed)
	}

	counter, err := s.seq.Next(ctx, sequence.ScopeIncident)
	if err != nil {
		return nil, fmt.Errorf("allocate incident counter: %w", err)
	}

	now := s.now().UTC()
	inc := &Incident{
		ID:             primitive.NewObjectID(),
		Code:           fmt.Sprintf("INC-%s-%04d", now.Format("20060102"), counter),
		Counter:        counter,
		IncidentTypeID: req.IncidentTypeID,
		UnitID:         req.UnitID,
		UserID:         creatorID,
		MessageID:      req.MessageID,
		TankID:         req.TankID,

		ReporterName:           req.ReporterName,
		ReporterContactDetails: req.ReporterContactDetails,
		Team:                   req.Team,
		CustomMessage:          req.CustomMessage,
		Action:                 req.Action,
		Description:            req.Description,

		TimeOfTurnout:  req.TimeOfTurnout,
		TimeOfArrival:  req.TimeOfArrival,
		TimeOfAllClear: req.TimeOfAllClear,

		Status:    StatusOpen,
		CreatedAt: now,
	}

	if err := s.repo.Insert(ctx, inc); err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}

	resp := s.buildResponse(ctx, inc, nil)
	s.notifier.IncidentCreated(ctx, inc.ID.Hex(), resp)
	s.logger.Infow("Created incident", "code", inc.Code, "incident_id", inc.ID.Hex(), "creator_id", creatorID)
	return resp, nil
}

func (s *incidentService) GetByID(ctx context.Context, id string) (*Response, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, helper.ErrRecordNotFound
	}

	inc, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	acks, err := s.repo.FindAcknowledgements(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, inc, acks), nil
}

func (s *incidentService) List(ctx context.Context, filter ListFilter) ([]*Response, error) {
	incidents, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*Response, 0, len(incidents))
	for _, inc := range incidents {
		acks, err := s.repo.FindAcknowledgements(ctx, inc.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, s.buildResponse(ctx, inc, acks))
	}
	return responses, nil
}

func (s *incidentService) Update(ctx context.Context, id string, req *UpdateIncidentRequest) (*Response, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, helper.ErrRecordNotFound
	}

	current, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	applyString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	applyTime := func(key string, v *time.Time) {
		if v != nil {
			set[key] = *v
		}
	}

	applyString("incident_type_id", req.IncidentTypeID)
	applyString("unit_id", req.UnitID)
	applyString("message_id", req.MessageID)
	applyString("tank_id", req.TankID)
	applyString("reporter_name", req.ReporterName)
	applyString("reporter_contact_details", req.ReporterContactDetails)
	applyString("team", req.Team)
	applyString("custom_message", req.CustomMessage)
	applyString("action", req.Action)
	applyString("description", req.Description)
	applyTime("time_of_turnout", req.TimeOfTurnout)
	applyTime("time_of_arrival", req.TimeOfArrival)
	applyTime("time_of_all_clear", req.TimeOfAllClear)

	// Status writes are guarded on the observed status so a concurrent
	// close cannot be overwritten: the update only applies if the status
	// is still what this patch was computed against.
	var guard bson.M
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", helper.ErrValidationFailed, *req.Status)
		}
		if current.Status == StatusClose && *req.Status != StatusClose {
			return nil, fmt.Errorf("%w: a closed incident cannot be reopened", helper.ErrValidationFailed)
		}
		guard = bson.M{"status": current.Status}
		set["status"] = *req.Status
		if *req.Status == StatusClose && current.ClosedAt == nil {
			set["closed_at"] = s.now().UTC()
		}
	}

	if len(set) == 0 {
		return s.buildResponseWithAcks(ctx, current)
	}

	updated, err := s.repo.Update(ctx, oid, guard, set)
	if errors.Is(err, helper.ErrRecordNotFound) && guard != nil {
		// Lost the race: the incident still exists but its status moved
		// under us, so the patch no longer applies.
		if _, findErr := s.repo.FindByID(ctx, oid); findErr == nil {
			return nil, fmt.Errorf("%w: incident status changed concurrently", helper.ErrValidationFailed)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	resp, err := s.buildResponseWithAcks(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifier.IncidentUpdated(ctx, updated.ID.Hex(), resp)
	return resp, nil
}

// Close is idempotent: re-closing a closed incident neither fails nor
// advances ClosedAt.
func (s *incidentService) Close(ctx context.Context, id, userID string) (*Response, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, helper.ErrRecordNotFound
	}

	current, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if current.Status == StatusClose && current.ClosedAt != nil {
		return s.buildResponseWithAcks(ctx, current)
	}

	set := bson.M{"status": StatusClose}
	if current.ClosedAt == nil {
		set["closed_at"] = s.now().UTC()
	}

	// Guarded on not-yet-closed: if a concurrent Close wins, this one
	// becomes the idempotent no-op instead of restamping ClosedAt.
	updated, err := s.repo.Update(ctx, oid, bson.M{"status": bson.M{"$ne": StatusClose}}, set)
	if errors.Is(err, helper.ErrRecordNotFound) {
		closed, findErr := s.repo.FindByID(ctx, oid)
		if findErr != nil {
			return nil, findErr
		}
		return s.buildResponseWithAcks(ctx, closed)
	}
	if err != nil {
		return nil, err
	}

	resp, err := s.buildResponseWithAcks(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.notifier.IncidentClosed(ctx, updated.ID.Hex(), resp)
	s.logger.Infow("Closed incident", "code", updated.Code, "incident_id", updated.ID.Hex(), "closed_by", userID)
	return resp, nil
}

func (s *incidentService) Acknowledge(ctx context.Context, incidentID, userID string, req *AcknowledgeRequest) (*AcknowledgementResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", helper.ErrValidationFailed)
	}

	oid, err := primitive.ObjectIDFromHex(incidentID)
	if err != nil {
		return nil, helper.ErrRecordNotFound
	}

	if _, err := s.repo.FindByID(ctx, oid); err != nil {
		return nil, err
	}

	ack, err := s.repo.UpsertAcknowledgement(ctx, oid, userID, req.ETA, req.AcknowledgementStatus, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("upsert acknowledgement: %w", err)
	}

	resp := s.buildAckResponse(ctx, ack)
	s.notifier.IncidentAcknowledged(ctx, incidentID, resp)
	return &resp, nil
}

func (s *incidentService) ListAcknowledgements(ctx context.Context, incidentID string) ([]AcknowledgementResponse, error) {
	oid, err := primitive.ObjectIDFromHex(incidentID)
	if err != nil {
		return nil, helper.ErrRecordNotFound
	}

	acks, err := s.repo.FindAcknowledgements(ctx, oid)
	if err != nil {
		return nil, err
	}

	responses := make([]AcknowledgementResponse, 0, len(acks))
	for _, ack := range acks {
		responses = append(responses, s.buildAckResponse(ctx, ack))
	}
	return responses, nil
}

func (s *incidentService) buildResponseWithAcks(ctx context.Context, inc *Incident) (*Response, error) {
	acks, err := s.repo.FindAcknowledgements(ctx, inc.ID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, inc, acks), nil
}

// buildResponse joins lookup names in; a dangling reference degrades to
// "Unknown" instead of failing the read.
func (s *incidentService) buildResponse(ctx context.Context, inc *Incident, acks []*Acknowledgement) *Response {
	resp := &Response{
		ID:               inc.ID.Hex(),
		Code:             inc.Code,
		Counter:          inc.Counter,
		IncidentTypeID:   inc.IncidentTypeID,
		IncidentTypeName: unknownName,
		UnitID:           inc.UnitID,
		UnitName:         unknownName,
		UserID:           inc.UserID,
		UserName:         unknownName,
		MessageID:        inc.MessageID,
		MessageText:      unknownName,
		TankID:           inc.TankID,

		ReporterName:           inc.ReporterName,
		ReporterContactDetails: inc.ReporterContactDetails,
		Team:                   inc.Team,
		CustomMessage:          inc.CustomMessage,
		Action:                 inc.Action,
		Description:            inc.Description,

		TimeOfTurnout:  inc.TimeOfTurnout,
		TimeOfArrival:  inc.TimeOfArrival,
		TimeOfAllClear: inc.TimeOfAllClear,

		Status:    inc.Status,
		CreatedAt: inc.CreatedAt,
		ClosedAt:  inc.ClosedAt,

		Acknowledgements: make([]AcknowledgementResponse, 0, len(acks)),
	}

	if t, err := s.dir.IncidentTypeByID(ctx, inc.IncidentTypeID); err == nil && t != nil {
		resp.IncidentTypeName = t.Name
		resp.IncidentTypeImage = t.Image
	}
	if u, err := s.dir.BusinessUnitByID(ctx, inc.UnitID); err == nil && u != nil {
		resp.UnitName = u.Name
	}
	if u, err := s.dir.UserByID(ctx, inc.UserID); err == nil && u != nil {
		resp.UserName = u.UserName
		resp.UserEmployeeID = u.EmployeeID
	}
	if m, err := s.dir.MessageByID(ctx, inc.MessageID); err == nil && m != nil {
		resp.MessageText = m.Description
	}
	if inc.TankID != "" {
		resp.TankName = unknownName
		if t, err := s.dir.TankByID(ctx, inc.TankID); err == nil && t != nil {
			resp.TankName = t.Name
			resp.TankNumber = t.TankNumber
		}
	}

	for _, ack := range acks {
		resp.Acknowledgements = append(resp.Acknowledgements, s.buildAckResponse(ctx, ack))
	}
	return resp
}

func (s *incidentService) buildAckResponse(ctx context.Context, ack *Acknowledgement) AcknowledgementResponse {
	resp := AcknowledgementResponse{
		ID:                    ack.ID.Hex(),
		UserID:                ack.UserID,
		UserName:              unknownName,
		ETA:                   ack.ETA,
		AcknowledgementStatus: ack.AcknowledgementStatus,
		CreatedAt:             ack.CreatedAt,
	}
	if u, err := s.dir.UserByID(ctx, ack.UserID); err == nil && u != nil {
		resp.UserName = u.UserName
		resp.UserEmployeeID = u.EmployeeID
	}
	return resp
}
