package mongo

import (
	"time"

	"github.com/itchan-dev/threads/shared/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type threadDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Text      string               `bson:"text"`
	Author    string               `bson:"author"`
	Community *string              `bson:"community"`
	ParentID  *primitive.ObjectID  `bson:"parentId,omitempty"`
	Children  []primitive.ObjectID `bson:"children"`
	CreatedAt time.Time            `bson:"createdAt"`
}

type userDocument struct {
	ID        string               `bson:"_id"`
	Username  string               `bson:"username,omitempty"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image,omitempty"`
	Bio       string               `bson:"bio,omitempty"`
	Onboarded bool                 `bson:"onboarded"`
	Threads   []primitive.ObjectID `bson:"threads"`
}

func (d threadDocument) toDomain() domain.Thread {
	t := domain.Thread{
		Id:          d.ID.Hex(),
		Text:        d.Text,
		AuthorId:    d.Author,
		CommunityId: d.Community,
		ChildIds:    hexIds(d.Children),
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.ParentID != nil {
		parent := d.ParentID.Hex()
		t.ParentId = &parent
	}
	return t
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		Id:        d.ID,
		Username:  d.Username,
		Name:      d.Name,
		Image:     d.Image,
		Bio:       d.Bio,
		Onboarded: d.Onboarded,
		Threads:   hexIds(d.Threads),
	}
}

func hexIds(ids []primitive.ObjectID) []domain.ThreadId {
	out := make([]domain.ThreadId, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// objectIds converts thread ids, dropping the ones that are not valid ObjectIDs:
// such ids cannot match any stored thread.
func objectIds(ids []domain.ThreadId) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

// now is truncated to the millisecond precision of BSON dates.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
