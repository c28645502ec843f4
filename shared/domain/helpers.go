package domain

import (
	"fmt"
	"time"
)

// for debug
func (t *Thread) String() string {
	s := fmt.Sprintf("[id:%s, author:%s, text:%s, created:%s, parent:%v, children:[", t.Id, t.AuthorId, t.Text, t.CreatedAt.Format(time.StampMilli), t.ParentId)
	for i, child := range t.Children {
		if i > 0 {
			s += ", "
		}
		s += child.String()
	}
	return s + "]]"
}
