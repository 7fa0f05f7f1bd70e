package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/internal/domain/service"
	"rewear/pkg/errors"
	"rewear/pkg/logger"
)

type SwapUseCase struct {
	uow      repository.UnitOfWork
	swapRepo repository.SwapRepository
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
	notifier service.SwapNotifier
	throttle MessageThrottle
	now      func() time.Time
}

func NewSwapUseCase(
	uow repository.UnitOfWork,
	swapRepo repository.SwapRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	notifier service.SwapNotifier,
	throttle MessageThrottle,
) *SwapUseCase {
	if notifier == nil {
		notifier = service.NopNotifier()
	}
	return &SwapUseCase{
		uow:      uow,
		swapRepo: swapRepo,
		itemRepo: itemRepo,
		userRepo: userRepo,
		notifier: notifier,
		throttle: throttle,
		now:      time.Now,
	}
}

type CreateSwapInput struct {
	ItemID        string
	OfferedItemID string
	SwapType      entity.SwapType
	PointsOffered int
	Message       string
}

type ListSwapsInput struct {
	Type   string
	Status entity.SwapStatus
}

const (
	SwapListIncoming = "incoming"
	SwapListOutgoing = "outgoing"
	SwapListAll      = "all"
)

func validateCreateSwap(input CreateSwapInput) []errors.FieldError {
	var details []errors.FieldError
	if input.ItemID == "" {
		details = append(details, errors.FieldError{Field: "item_id", Message: "item_id is required"})
	}
	if !input.SwapType.IsValid() {
		details = append(details, errors.FieldError{Field: "swap_type", Message: "swap_type must be one of: direct points"})
	}
	if input.PointsOffered < 0 {
		details = append(details, errors.FieldError{Field: "points_offered", Message: "points_offered must be at least 0"})
	}
	switch input.SwapType {
	case entity.SwapTypePoints:
		if input.PointsOffered <= 0 {
			details = append(details, errors.FieldError{Field: "points_offered", Message: "points_offered must be greater than 0 for points swaps"})
		}
	case entity.SwapTypeDirect:
		if input.OfferedItemID == "" {
			details = append(details, errors.FieldError{Field: "offered_item_id", Message: "offered_item_id is required for direct swaps"})
		}
	}
	if utf8.RuneCountInString(input.Message) > entity.MaxSwapMessageLength {
		details = append(details, errors.FieldError{Field: "message", Message: "message must be at most 500 characters"})
	}
	return details
}

// CreateSwap opens a pending swap request on another user's listing.
func (uc *SwapUseCase) CreateSwap(ctx context.Context, requesterID string, input CreateSwapInput) (*entity.Swap, error) {
	if details := validateCreateSwap(input); len(details) > 0 {
		return nil, errors.Validation("Invalid input data", details...)
	}

	var created *entity.Swap
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		item, err := tx.GetItem(input.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID == requesterID {
			return errors.Validation("Cannot swap your own item", errors.FieldError{Field: "item_id", Message: "cannot swap own item"})
		}
		if !item.IsListed() {
			return errors.InvalidState("Item is not available for swap")
		}

		if input.SwapType == entity.SwapTypeDirect {
			offered, err := tx.GetItem(input.OfferedItemID)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return errors.Validation("Invalid offered item", errors.FieldError{Field: "offered_item_id", Message: "offered item does not exist"})
				}
				return err
			}
			if offered.OwnerID != requesterID {
				return errors.Validation("Invalid offered item", errors.FieldError{Field: "offered_item_id", Message: "offered item must be your own"})
			}
			if !offered.Available {
				return errors.Validation("Invalid offered item", errors.FieldError{Field: "offered_item_id", Message: "offered item is not available"})
			}
		}

		existing, err := tx.FindPendingSwap(requesterID, item.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.Conflict("You already have a pending swap request for this item")
		}

		now := uc.now()
		swap := &entity.Swap{
			RequesterID:   requesterID,
			OwnerID:       item.OwnerID,
			ItemID:        item.ID,
			Status:        entity.SwapPending,
			Type:          input.SwapType,
			PointsOffered: input.PointsOffered,
			Message:       strings.TrimSpace(input.Message),
			Messages:      []entity.SwapMessage{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if input.SwapType == entity.SwapTypeDirect {
			swap.OfferedItemID = input.OfferedItemID
			swap.PointsOffered = 0
		}

		if err := tx.CreateSwap(swap); err != nil {
			return err
		}
		item.SwapRequests = append(item.SwapRequests, swap.ID)
		if err := tx.PutItem(item); err != nil {
			return err
		}

		created = swap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, service.SwapEventCreated, requesterID, created, nil)
	return created, nil
}

// AcceptSwap moves a pending swap to accepted. For points swaps the offered points move from
// requester to owner, and the acceptance is refused when the requester can no longer cover them.
// Both listings become unavailable in the same transaction.
func (uc *SwapUseCase) AcceptSwap(ctx context.Context, userID, id string) (*entity.Swap, error) {
	var accepted *entity.Swap
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap, err := tx.GetSwap(id)
		if err != nil {
			return err
		}
		if swap.OwnerID != userID {
			return errors.Forbidden("Only the item owner can accept this swap", nil)
		}
		if swap.Status != entity.SwapPending {
			return errors.InvalidState("Swap is " + string(swap.Status) + " and cannot be accepted")
		}

		item, err := tx.GetItem(swap.ItemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return errors.InvalidState("Item is no longer available")
		}

		var offered *entity.Item
		if swap.OfferedItemID != "" {
			if offered, err = tx.GetItem(swap.OfferedItemID); err != nil {
				return err
			}
			if !offered.Available {
				return errors.InvalidState("Offered item is no longer available")
			}
		}

		var requester, owner *entity.User
		if swap.Type == entity.SwapTypePoints && swap.PointsOffered > 0 {
			if requester, err = tx.GetUser(swap.RequesterID); err != nil {
				return err
			}
			if owner, err = tx.GetUser(swap.OwnerID); err != nil {
				return err
			}
			if requester.Points < swap.PointsOffered {
				return errors.InvalidState("Requester no longer has enough points for this swap")
			}
		}

		if err := swap.TransitionTo(entity.SwapAccepted, uc.now()); err != nil {
			return errors.InvalidState(err.Error())
		}

		if requester != nil {
			requester.Points -= swap.PointsOffered
			owner.Points += swap.PointsOffered
			swap.PointsTransferred = true
			if err := tx.PutUser(requester); err != nil {
				return err
			}
			if err := tx.PutUser(owner); err != nil {
				return err
			}
		}

		item.Available = false
		if err := tx.PutItem(item); err != nil {
			return err
		}
		if offered != nil {
			offered.Available = false
			if err := tx.PutItem(offered); err != nil {
				return err
			}
		}
		if err := tx.PutSwap(swap); err != nil {
			return err
		}

		accepted = swap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, service.SwapEventAccepted, userID, accepted, nil)
	return accepted, nil
}

func (uc *SwapUseCase) RejectSwap(ctx context.Context, userID, id string) (*entity.Swap, error) {
	return uc.transition(ctx, userID, id, entity.SwapRejected, service.SwapEventRejected, func(swap *entity.Swap) error {
		if swap.OwnerID != userID {
			return errors.Forbidden("Only the item owner can reject this swap", nil)
		}
		return nil
	})
}

// CancelSwap lets the requester withdraw a swap that is still pending.
func (uc *SwapUseCase) CancelSwap(ctx context.Context, userID, id string) (*entity.Swap, error) {
	return uc.transition(ctx, userID, id, entity.SwapCancelled, service.SwapEventCancelled, func(swap *entity.Swap) error {
		if swap.RequesterID != userID {
			return errors.Forbidden("Only the requester can cancel this swap", nil)
		}
		return nil
	})
}

// CompleteSwap closes an accepted swap and credits both participants with a completed swap.
func (uc *SwapUseCase) CompleteSwap(ctx context.Context, userID, id string) (*entity.Swap, error) {
	var completed *entity.Swap
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap, err := tx.GetSwap(id)
		if err != nil {
			return err
		}
		if !swap.IsParticipant(userID) {
			return errors.Forbidden("Not authorized to complete this swap", nil)
		}
		if swap.Status != entity.SwapAccepted {
			return errors.InvalidState("Swap is " + string(swap.Status) + " and cannot be completed")
		}

		requester, err := tx.GetUser(swap.RequesterID)
		if err != nil {
			return err
		}
		owner, err := tx.GetUser(swap.OwnerID)
		if err != nil {
			return err
		}

		if err := swap.TransitionTo(entity.SwapCompleted, uc.now()); err != nil {
			return errors.InvalidState(err.Error())
		}
		requester.SwapsCompleted++
		owner.SwapsCompleted++

		if err := tx.PutUser(requester); err != nil {
			return err
		}
		if err := tx.PutUser(owner); err != nil {
			return err
		}
		if err := tx.PutSwap(swap); err != nil {
			return err
		}

		completed = swap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, service.SwapEventCompleted, userID, completed, nil)
	return completed, nil
}

// transition applies a status change that has no side effects beyond the swap record.
func (uc *SwapUseCase) transition(
	ctx context.Context,
	userID, id string,
	next entity.SwapStatus,
	event service.SwapEventType,
	authorize func(*entity.Swap) error,
) (*entity.Swap, error) {
	var updated *entity.Swap
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap, err := tx.GetSwap(id)
		if err != nil {
			return err
		}
		if err := authorize(swap); err != nil {
			return err
		}
		if err := swap.TransitionTo(next, uc.now()); err != nil {
			return errors.InvalidState("Swap is " + string(swap.Status) + " and cannot move to " + string(next))
		}
		if err := tx.PutSwap(swap); err != nil {
			return err
		}
		updated = swap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, event, userID, updated, nil)
	return updated, nil
}

// AddMessage appends to the swap thread. Messages are allowed in every status.
func (uc *SwapUseCase) AddMessage(ctx context.Context, userID, id, text string) (*entity.SwapMessage, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > entity.MaxSwapMessageLength {
		return nil, errors.Validation("Invalid input data", errors.FieldError{Field: "message", Message: "message must be between 1 and 500 characters"})
	}
	if uc.throttle != nil && !uc.throttle.Allow(userID) {
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	var (
		msg     entity.SwapMessage
		updated *entity.Swap
	)
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap, err := tx.GetSwap(id)
		if err != nil {
			return err
		}
		if !swap.IsParticipant(userID) {
			return errors.Forbidden("Not authorized to message on this swap", nil)
		}

		msg = swap.AddMessage(userID, text, uc.now())
		updated = swap
		return tx.PutSwap(swap)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, service.SwapEventMessage, userID, updated, &msg)
	return &msg, nil
}

// RateSwap records the caller's single rating on a completed swap and folds it into the
// counterparty's reputation.
func (uc *SwapUseCase) RateSwap(ctx context.Context, userID, id string, score int, comment string) (*entity.Swap, error) {
	if score < 1 || score > 5 {
		return nil, errors.Validation("Invalid input data", errors.FieldError{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	if utf8.RuneCountInString(comment) > entity.MaxSwapMessageLength {
		return nil, errors.Validation("Invalid input data", errors.FieldError{Field: "comment", Message: "comment must be at most 500 characters"})
	}

	var rated *entity.Swap
	err := uc.uow.RunInTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		swap, err := tx.GetSwap(id)
		if err != nil {
			return err
		}
		if !swap.IsParticipant(userID) {
			return errors.Forbidden("Not authorized to rate this swap", nil)
		}
		if swap.Status != entity.SwapCompleted {
			return errors.InvalidState("Only completed swaps can be rated")
		}

		ratee, err := tx.GetUser(swap.Counterparty(userID))
		if err != nil {
			return err
		}

		if _, err := swap.Rate(userID, score, strings.TrimSpace(comment), uc.now()); err != nil {
			if stderrors.Is(err, entity.ErrAlreadyRated) {
				return errors.Conflict("You have already rated this swap")
			}
			return errors.Forbidden(err.Error(), err)
		}
		ratee.AddRating(score)

		if err := tx.PutUser(ratee); err != nil {
			return err
		}
		if err := tx.PutSwap(swap); err != nil {
			return err
		}
		rated = swap
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, service.SwapEventRated, userID, rated, nil)
	return rated, nil
}

// GetSwap returns a populated swap visible only to its participants.
func (uc *SwapUseCase) GetSwap(ctx context.Context, userID, id string) (*entity.SwapView, error) {
	swap, err := uc.swapRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(userID) {
		return nil, errors.Forbidden("Not authorized to view this swap", nil)
	}

	views, err := uc.populate(ctx, []*entity.Swap{swap})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (uc *SwapUseCase) ListSwaps(ctx context.Context, userID string, input ListSwapsInput) ([]*entity.SwapView, error) {
	filter := repository.SwapFilter{Status: input.Status}
	switch input.Type {
	case SwapListIncoming:
		filter.OwnerID = userID
	case SwapListOutgoing:
		filter.RequesterID = userID
	case SwapListAll, "":
		filter.ParticipantID = userID
	default:
		return nil, errors.Validation("Invalid query parameters", errors.FieldError{Field: "type", Message: "type must be one of: incoming outgoing all"})
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, errors.Validation("Invalid query parameters", errors.FieldError{Field: "status", Message: "status must be one of: pending accepted rejected completed cancelled"})
	}

	swaps, err := uc.swapRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return uc.populate(ctx, swaps)
}

// populate resolves listing and participant summaries, reading each record once.
// Records deleted since the swap was created are left nil.
func (uc *SwapUseCase) populate(ctx context.Context, swaps []*entity.Swap) ([]*entity.SwapView, error) {
	items := make(map[string]*entity.ItemSummary)
	users := make(map[string]*entity.PublicProfile)

	item := func(id string) (*entity.ItemSummary, error) {
		if id == "" {
			return nil, nil
		}
		if summary, ok := items[id]; ok {
			return summary, nil
		}
		found, err := uc.itemRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				items[id] = nil
				return nil, nil
			}
			return nil, err
		}
		items[id] = found.Summary()
		return items[id], nil
	}
	user := func(id string) (*entity.PublicProfile, error) {
		if profile, ok := users[id]; ok {
			return profile, nil
		}
		found, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				users[id] = nil
				return nil, nil
			}
			return nil, err
		}
		users[id] = found.Public()
		return users[id], nil
	}

	views := make([]*entity.SwapView, 0, len(swaps))
	for _, swap := range swaps {
		view := &entity.SwapView{Swap: swap}
		var err error
		if view.Item, err = item(swap.ItemID); err != nil {
			return nil, err
		}
		if view.OfferedItem, err = item(swap.OfferedItemID); err != nil {
			return nil, err
		}
		if view.Requester, err = user(swap.RequesterID); err != nil {
			return nil, err
		}
		if view.Owner, err = user(swap.OwnerID); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc *SwapUseCase) publish(ctx context.Context, kind service.SwapEventType, actorID string, swap *entity.Swap, msg *entity.SwapMessage) {
	uc.notifier.Notify(ctx, service.SwapEvent{
		Type:       kind,
		SwapID:     swap.ID,
		ActorID:    actorID,
		Status:     swap.Status,
		Message:    msg,
		At:         uc.now(),
		Recipients: []string{swap.RequesterID, swap.OwnerID},
	})
	logger.Debug("swap %s: %s by %s", swap.ID, kind, actorID)
}
