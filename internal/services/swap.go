package services

import (
	"errors"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/utils"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

// SwapService implements the swap-request state machine:
// open -> accepted | cancelled, no transitions out of a terminal
// state. Every transition that touches both the request and its
// underlying assignment runs in a single transaction.
type SwapService struct {
	db      *gorm.DB
	baseURL string
}

func NewSwapService(db *gorm.DB, baseURL string) *SwapService {
	return &SwapService{db: db, baseURL: baseURL}
}

type CreateSwapResult struct {
	ID         uint      `json:"id"`
	ShareToken string    `json:"share_token"`
	ShareLink  string    `json:"share_link"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *SwapService) shareLink(token string) string {
	return s.baseURL + "/swap-requests/" + token
}

// Create opens a swap request for an assignment owned by requesterID
// and flips the assignment to pending_swap. At most one open request
// may exist per assignment; the partial unique index backs up the
// in-transaction check on drivers that support it.
func (s *SwapService) Create(assignmentID, requesterID uint) (*CreateSwapResult, error) {
	var result *CreateSwapResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.ShiftAssignment
		if err := forUpdate(tx).First(&assignment, assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("assignment not found")
			}
			return err
		}
		if assignment.UserID != requesterID {
			return response.NewForbidden("you can only swap your own assignments")
		}

		var open int64
		if err := tx.Model(&models.SwapRequest{}).
			Where("assignment_id = ? AND status = ?", assignmentID, models.SwapOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return response.NewInvalidState("you already have an open swap request for this shift")
		}

		token, err := utils.NewShareToken()
		if err != nil {
			return err
		}

		request := models.SwapRequest{
			AssignmentID: assignmentID,
			RequesterID:  requesterID,
			Status:       models.SwapOpen,
			ShareToken:   token,
		}
		if err := tx.Create(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewInvalidState("you already have an open swap request for this shift")
			}
			return err
		}

		if err := tx.Model(&assignment).Update("status", models.AssignmentPendingSwap).Error; err != nil {
			return err
		}

		result = &CreateSwapResult{
			ID:         request.ID,
			ShareToken: request.ShareToken,
			ShareLink:  s.shareLink(request.ShareToken),
			CreatedAt:  request.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SwapOffer is the public view of an open swap request, reachable by
// share token only.
type SwapOffer struct {
	ID            uint      `json:"id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	RequesterName string    `json:"requester_name"`
	RoleName      string    `json:"role_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	EventTitle    string    `json:"event_title"`
	EventLocation string    `json:"event_location"`
}

// View resolves a share token to the offer details. Resolved or
// missing tokens both return NotFound so resolved offers cannot be
// enumerated apart from missing ones.
func (s *SwapService) View(token string) (*SwapOffer, error) {
	var request models.SwapRequest
	err := s.db.Where("share_token = ? AND status = ?", token, models.SwapOpen).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("swap request not found or expired")
		}
		return nil, err
	}

	detail, err := s.loadDetail(s.db, &request)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// FindByToken resolves a share token regardless of request status.
func (s *SwapService) FindByToken(token string) (*models.SwapRequest, error) {
	var request models.SwapRequest
	if err := s.db.Where("share_token = ?", token).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("swap request not found")
		}
		return nil, err
	}
	return &request, nil
}

type swapContext struct {
	assignment models.ShiftAssignment
	subShift   models.SubShift
	event      models.Event
}

func (s *SwapService) loadContext(tx *gorm.DB, request *models.SwapRequest) (*swapContext, error) {
	var ctx swapContext
	if err := tx.First(&ctx.assignment, request.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("original assignment not found")
		}
		return nil, err
	}
	if err := tx.First(&ctx.subShift, ctx.assignment.SubShiftID).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&ctx.event, ctx.subShift.EventID).Error; err != nil {
		return nil, err
	}
	return &ctx, nil
}

func (s *SwapService) loadDetail(tx *gorm.DB, request *models.SwapRequest) (*SwapOffer, error) {
	ctx, err := s.loadContext(tx, request)
	if err != nil {
		return nil, err
	}

	var requester models.Profile
	requesterName := "Unknown"
	if err := tx.First(&requester, request.RequesterID).Error; err == nil {
		requesterName = requester.FullName
	}

	start, end := ctx.subShift.EffectiveWindow(&ctx.event)
	return &SwapOffer{
		ID:            request.ID,
		Status:        request.Status,
		CreatedAt:     request.CreatedAt,
		RequesterName: requesterName,
		RoleName:      ctx.subShift.RoleName,
		StartTime:     start,
		EndTime:       end,
		EventTitle:    ctx.event.Title,
		EventLocation: ctx.event.Location,
	}, nil
}

// Accept transfers the offered assignment to actingUserID and closes
// the request, atomically. Ownership moves by rewriting user_id on the
// same row; the status is explicitly reset to confirmed at the same
// time. A partial result here would allow double acceptance, so both
// writes share one transaction.
func (s *SwapService) Accept(token string, actingUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.SwapRequest
		if err := forUpdate(tx).Where("share_token = ?", token).First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("swap request not found")
			}
			return err
		}
		if request.Status != models.SwapOpen {
			return response.NewInvalidState("swap request is no longer available")
		}
		if request.RequesterID == actingUserID {
			return response.NewForbidden("you cannot accept your own swap request")
		}

		ctx, err := s.loadContext(tx, &request)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ShiftAssignment{}).
			Where("sub_shift_id = ? AND user_id = ?", ctx.assignment.SubShiftID, actingUserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return response.NewAlreadyAssigned("you are already assigned to this shift")
		}

		// Taking over a shift is subject to the same overlap rule as
		// signing up for it.
		start, end := ctx.subShift.EffectiveWindow(&ctx.event)
		conflict, err := NewAssignmentService(s.db).hasOverlap(tx, actingUserID, start, end)
		if err != nil {
			return err
		}
		if conflict {
			return response.NewScheduleConflict("this shift overlaps with one of your assignments")
		}

		if err := tx.Model(&ctx.assignment).Updates(map[string]interface{}{
			"user_id": actingUserID,
			"status":  models.AssignmentConfirmed,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&request).Updates(map[string]interface{}{
			"status":         models.SwapAccepted,
			"accepted_by_id": actingUserID,
		}).Error
	})
}

// Decline cancels an open request on behalf of a non-requester and
// restores the assignment to confirmed so the owner can offer it
// again. (The assignment restore is deliberate: leaving it
// pending_swap would strand the owner with no open request.)
func (s *SwapService) Decline(token string, actingUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.SwapRequest
		if err := forUpdate(tx).Where("share_token = ?", token).First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("swap request not found")
			}
			return err
		}
		if request.Status != models.SwapOpen {
			return response.NewInvalidState("swap request is no longer available")
		}
		if request.RequesterID == actingUserID {
			return response.NewForbidden("use cancel to withdraw your own swap request")
		}

		if err := tx.Model(&models.ShiftAssignment{}).
			Where("id = ?", request.AssignmentID).
			Update("status", models.AssignmentConfirmed).Error; err != nil {
			return err
		}

		return tx.Model(&request).Update("status", models.SwapCancelled).Error
	})
}

// Cancel withdraws the requester's own open swap request and restores
// the underlying assignment to confirmed.
func (s *SwapService) Cancel(requestID, requesterID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.SwapRequest
		if err := forUpdate(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("swap request not found")
			}
			return err
		}
		if request.RequesterID != requesterID {
			return response.NewForbidden("you can only cancel your own swap requests")
		}
		if request.Status != models.SwapOpen {
			return response.NewInvalidState("swap request is no longer open")
		}

		if err := tx.Model(&models.ShiftAssignment{}).
			Where("id = ?", request.AssignmentID).
			Update("status", models.AssignmentConfirmed).Error; err != nil {
			return err
		}

		return tx.Model(&request).Update("status", models.SwapCancelled).Error
	})
}

// SwapListItem is one entry of the volunteer-facing swap timeline.
type SwapListItem struct {
	ID            uint      `json:"id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ShareToken    string    `json:"share_token,omitempty"`
	ShareLink     string    `json:"share_link,omitempty"`
	IsMine        bool      `json:"is_mine"`
	RequesterID   uint      `json:"requester_id"`
	EventID       uint      `json:"event_id"`
	RoleName      string    `json:"role_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	EventTitle    string    `json:"event_title"`
	EventLocation string    `json:"event_location"`
}

// ListForUser returns all open and accepted swap requests so the
// volunteer view can show the full exchange timeline, flagging the
// caller's own requests.
func (s *SwapService) ListForUser(userID uint) ([]SwapListItem, error) {
	var requests []models.SwapRequest
	if err := s.db.Where("status IN ?", []string{models.SwapOpen, models.SwapAccepted}).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	items := make([]SwapListItem, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		ctx, err := s.loadContext(s.db, r)
		if err != nil {
			// Assignment rows can vanish with their sub-shift; skip
			// orphaned requests rather than failing the whole list.
			var appErr *response.AppError
			if errors.As(err, &appErr) && appErr.Reason == response.ReasonNotFound {
				continue
			}
			return nil, err
		}

		start, end := ctx.subShift.EffectiveWindow(&ctx.event)
		item := SwapListItem{
			ID:            r.ID,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt,
			IsMine:        r.RequesterID == userID,
			RequesterID:   r.RequesterID,
			EventID:       ctx.event.ID,
			RoleName:      ctx.subShift.RoleName,
			StartTime:     start,
			EndTime:       end,
			EventTitle:    ctx.event.Title,
			EventLocation: ctx.event.Location,
		}
		if r.Status == models.SwapOpen {
			item.ShareToken = r.ShareToken
			item.ShareLink = s.shareLink(r.ShareToken)
		}
		items = append(items, item)
	}
	return items, nil
}

// AdminSwapItem is one entry of the admin open-swap overview.
type AdminSwapItem struct {
	ID             uint      `json:"id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	RequesterName  string    `json:"requester_name"`
	RequesterEmail string    `json:"requester_email"`
	RoleName       string    `json:"role_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	EventTitle     string    `json:"event_title"`
}

// ListOpen returns all open swap requests with requester details for
// the admin overview.
func (s *SwapService) ListOpen() ([]AdminSwapItem, error) {
	var requests []models.SwapRequest
	if err := s.db.Where("status = ?", models.SwapOpen).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	items := make([]AdminSwapItem, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		ctx, err := s.loadContext(s.db, r)
		if err != nil {
			var appErr *response.AppError
			if errors.As(err, &appErr) && appErr.Reason == response.ReasonNotFound {
				continue
			}
			return nil, err
		}

		var requester models.Profile
		name, email := "Unknown", ""
		if err := s.db.First(&requester, r.RequesterID).Error; err == nil {
			name, email = requester.FullName, requester.Email
		}

		start, end := ctx.subShift.EffectiveWindow(&ctx.event)
		items = append(items, AdminSwapItem{
			ID:             r.ID,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt,
			RequesterName:  name,
			RequesterEmail: email,
			RoleName:       ctx.subShift.RoleName,
			StartTime:      start,
			EndTime:        end,
			EventTitle:     ctx.event.Title,
		})
	}
	return items, nil
}
