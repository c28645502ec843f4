package domain

type (
	UserId      = string
	ThreadId    = string
	CommunityId = string

	ThreadText = string
)
