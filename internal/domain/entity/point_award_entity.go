package entity

import "time"

// AwardReason tells which interaction produced a point award.
type AwardReason string

const (
	AwardPerformance     AwardReason = "performance"
	AwardLikeReceived    AwardReason = "like_received"
	AwardCommentReceived AwardReason = "comment_received"
	AwardGiftReceived    AwardReason = "gift_received"
)

// PointAward is one immutable entry of the points audit trail.
type PointAward struct {
	ID        string
	UserID    string
	ActorID   string
	Reason    AwardReason
	Points    int64
	SourceID  string
	CreatedAt time.Time
}
