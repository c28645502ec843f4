package domain

import (
	"time"
)

// to iterate thru layers: service -> storage
type ThreadCreationData struct {
	Text        ThreadText
	AuthorId    UserId
	CommunityId *CommunityId
}

type ReplyCreationData struct {
	ParentId ThreadId
	Text     ThreadText
	AuthorId UserId
}

type Thread struct {
	Id          ThreadId     `json:"id"`
	Text        ThreadText   `json:"text"`
	AuthorId    UserId       `json:"author_id"`
	Author      *User        `json:"author,omitempty"` // set only when populated
	CommunityId *CommunityId `json:"community_id"`
	ParentId    *ThreadId    `json:"parent_id"` // nil for top-level posts
	ChildIds    []ThreadId   `json:"child_ids"`
	Children    []*Thread    `json:"children,omitempty"` // set only when populated, ChildIds order
	CreatedAt   time.Time    `json:"created_at"`
}

func (t *Thread) IsRoot() bool {
	return t.ParentId == nil
}

// Page is a 1-based feed page request. Zero values mean "use defaults".
type Page struct {
	Number int
	Size   int
}

// Window is the skip/limit pair storage applies to the sorted root posts.
type Window struct {
	Skip  int64
	Limit int64
}

type Feed struct {
	Posts   []*Thread `json:"posts"`
	HasNext bool      `json:"has_next"`
}
