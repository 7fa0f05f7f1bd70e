package entity

import (
	"errors"
	"time"
)

type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

type SwapType string

const (
	SwapTypeDirect SwapType = "direct"
	SwapTypePoints SwapType = "points"
)

const MaxSwapMessageLength = 500

var (
	ErrInvalidTransition = errors.New("invalid swap status transition")
	ErrNotParticipant    = errors.New("user is not a participant of this swap")
	ErrAlreadyRated      = errors.New("participant has already rated this swap")
)

// swapTransitions is the complete set of legal status moves. An accepted swap can only complete.
var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapRejected, SwapCancelled},
	SwapAccepted: {SwapCompleted},
}

func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapPending, SwapAccepted, SwapRejected, SwapCompleted, SwapCancelled:
		return true
	}
	return false
}

func (s SwapStatus) IsTerminal() bool {
	return len(swapTransitions[s]) == 0
}

func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range swapTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (t SwapType) IsValid() bool {
	return t == SwapTypeDirect || t == SwapTypePoints
}

type ParticipantRole string

const (
	RoleRequester ParticipantRole = "requester"
	RoleOwner     ParticipantRole = "owner"
)

type SwapMessage struct {
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	Text      string    `json:"message" firestore:"message"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

type RatingEntry struct {
	Rating  int       `json:"rating" firestore:"rating"`
	Comment string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	Date    time.Time `json:"date" firestore:"date"`
}

type SwapRating struct {
	FromRequester *RatingEntry `json:"from_requester,omitempty" firestore:"fromRequester,omitempty"`
	FromOwner     *RatingEntry `json:"from_owner,omitempty" firestore:"fromOwner,omitempty"`
}

type MeetingDetails struct {
	Location string     `json:"location,omitempty" firestore:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty" firestore:"date,omitempty"`
	Time     string     `json:"time,omitempty" firestore:"time,omitempty"`
	Notes    string     `json:"notes,omitempty" firestore:"notes,omitempty"`
}

type Address struct {
	Street  string `json:"street,omitempty" firestore:"street,omitempty"`
	City    string `json:"city,omitempty" firestore:"city,omitempty"`
	State   string `json:"state,omitempty" firestore:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty" firestore:"zipCode,omitempty"`
	Country string `json:"country,omitempty" firestore:"country,omitempty"`
}

type ShippingDetails struct {
	RequesterAddress *Address   `json:"requester_address,omitempty" firestore:"requesterAddress,omitempty"`
	OwnerAddress     *Address   `json:"owner_address,omitempty" firestore:"ownerAddress,omitempty"`
	TrackingNumber   string     `json:"tracking_number,omitempty" firestore:"trackingNumber,omitempty"`
	ShippedDate      *time.Time `json:"shipped_date,omitempty" firestore:"shippedDate,omitempty"`
	DeliveredDate    *time.Time `json:"delivered_date,omitempty" firestore:"deliveredDate,omitempty"`
}

type Swap struct {
	ID            string     `json:"id" firestore:"id"`
	RequesterID   string     `json:"requester_id" firestore:"requesterId"`
	OwnerID       string     `json:"owner_id" firestore:"ownerId"`
	ItemID        string     `json:"item_id" firestore:"itemId"`
	OfferedItemID string     `json:"offered_item_id,omitempty" firestore:"offeredItemId"`
	Status        SwapStatus `json:"status" firestore:"status"`
	Type          SwapType   `json:"swap_type" firestore:"swapType"`
	PointsOffered int        `json:"points_offered" firestore:"pointsOffered"`
	Message       string     `json:"message,omitempty" firestore:"message,omitempty"`

	// PointsTransferred records that the acceptance moved points between the participants.
	PointsTransferred bool `json:"points_transferred" firestore:"pointsTransferred"`

	Messages       []SwapMessage    `json:"messages" firestore:"messages"`
	Rating         SwapRating       `json:"rating" firestore:"rating"`
	MeetingDetails *MeetingDetails  `json:"meeting_details,omitempty" firestore:"meetingDetails,omitempty"`
	Shipping       *ShippingDetails `json:"shipping,omitempty" firestore:"shipping,omitempty"`

	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" firestore:"rejectedAt,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" firestore:"cancelledAt,omitempty"`
}

func (s *Swap) IsParticipant(userID string) bool {
	return userID != "" && (s.RequesterID == userID || s.OwnerID == userID)
}

// RoleOf returns the caller's side of the swap.
func (s *Swap) RoleOf(userID string) (ParticipantRole, error) {
	switch userID {
	case s.RequesterID:
		return RoleRequester, nil
	case s.OwnerID:
		return RoleOwner, nil
	}
	return "", ErrNotParticipant
}

// Counterparty returns the other participant's user ID.
func (s *Swap) Counterparty(userID string) string {
	if userID == s.RequesterID {
		return s.OwnerID
	}
	return s.RequesterID
}

// TransitionTo moves the swap to next, stamping the matching timestamp.
// The swap is left untouched when the move is illegal.
func (s *Swap) TransitionTo(next SwapStatus, at time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	s.Status = next
	s.UpdatedAt = at
	switch next {
	case SwapAccepted:
		s.AcceptedAt = &at
	case SwapRejected:
		s.RejectedAt = &at
	case SwapCompleted:
		s.CompletedAt = &at
	case SwapCancelled:
		s.CancelledAt = &at
	}
	return nil
}

func (s *Swap) AddMessage(senderID, text string, at time.Time) SwapMessage {
	msg := SwapMessage{SenderID: senderID, Text: text, Timestamp: at}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = at
	return msg
}

// Rate fills the caller's rating slot. Each participant rates at most once.
func (s *Swap) Rate(userID string, score int, comment string, at time.Time) (ParticipantRole, error) {
	role, err := s.RoleOf(userID)
	if err != nil {
		return "", err
	}

	entry := &RatingEntry{Rating: score, Comment: comment, Date: at}
	switch role {
	case RoleRequester:
		if s.Rating.FromRequester != nil {
			return role, ErrAlreadyRated
		}
		s.Rating.FromRequester = entry
	case RoleOwner:
		if s.Rating.FromOwner != nil {
			return role, ErrAlreadyRated
		}
		s.Rating.FromOwner = entry
	}
	s.UpdatedAt = at
	return role, nil
}

// SwapView is a swap with its listings and participants resolved.
type SwapView struct {
	*Swap
	Item        *ItemSummary   `json:"item,omitempty"`
	OfferedItem *ItemSummary   `json:"offered_item,omitempty"`
	Requester   *PublicProfile `json:"requester,omitempty"`
	Owner       *PublicProfile `json:"owner,omitempty"`
}
