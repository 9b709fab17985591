package pubsub

// Subjects used across the rewards service.
const (
	TopicRiderEvents   = "rider.events"
	TopicJourneyEvents = "journey.events"
	TopicBadgeEvents   = "badge.events"
)

// Event names carried in the envelope of each subject.
const (
	EventRiderSignedUp = "rider.signed_up"
	EventJourneyLogged = "journey.logged"
	EventBadgeUpgraded = "badge.upgraded"
)
