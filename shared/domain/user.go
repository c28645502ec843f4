package domain

type User struct {
	Id        UserId     `json:"id"`
	Username  string     `json:"username,omitempty"`
	Name      string     `json:"name"`
	Image     string     `json:"image,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	Onboarded bool       `json:"onboarded"`
	Threads   []ThreadId `json:"threads,omitempty"` // append-only, authored threads
}

// AuthorSummary is the projection used for nested authors: id, name and image.
func (u User) AuthorSummary() User {
	return User{Id: u.Id, Name: u.Name, Image: u.Image}
}
