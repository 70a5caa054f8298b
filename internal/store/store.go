// ABOUTME: Domain types, sentinel errors, and the Store interface
// ABOUTME: Backed by SQLiteStore; consumers depend on the interface only

package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for lookups and uniqueness violations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrReplyNotFound   = errors.New("reply not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateCourse = errors.New("course name already exists")
)

// Topic status values. New topics start unanswered; the first reply moves
// them to unsolved; marking a reply as the solution moves them to solved.
const (
	TopicUnanswered = "unanswered"
	TopicUnsolved   = "unsolved"
	TopicSolved     = "solved"
	TopicClosed     = "closed"
)

// User is a forum account. PasswordHash is a bcrypt hash and never leaves
// the store/auth boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Profiles     []Profile
	CreatedAt    time.Time
}

// ProfileNames returns the names of the user's profiles.
func (u *User) ProfileNames() []string {
	names := make([]string, len(u.Profiles))
	for i, p := range u.Profiles {
		names[i] = p.Name
	}
	return names
}

// Profile is a named role granted to users, e.g. "ROLE_USER".
type Profile struct {
	ID   string
	Name string
}

// Course groups topics, e.g. "Spring Boot" in category "Programming".
type Course struct {
	ID        string
	Name      string
	Category  string
	CreatedAt time.Time
}

// Topic is a forum discussion thread.
type Topic struct {
	ID        string
	Title     string
	Message   string
	Status    string
	AuthorID  string
	CourseID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reply is a message posted under a topic. Solution marks the reply that
// resolved the topic.
type Reply struct {
	ID        string
	TopicID   string
	Message   string
	AuthorID  string
	Solution  bool
	CreatedAt time.Time
}

// TopicSummary is a topic row joined with author and course names, used by
// list and search responses.
type TopicSummary struct {
	Topic
	AuthorName string
	CourseName string
}

// TopicDetail is a topic with its replies and display names, used by the
// detail endpoint.
type TopicDetail struct {
	TopicSummary
	Replies []ReplyDetail
}

// ReplyDetail is a reply joined with its author name.
type ReplyDetail struct {
	Reply
	AuthorName string
}

// TopicFilter narrows and pages ListTopics. Page is zero-based. Sort must
// be one of the whitelisted columns; SortDesc orders descending.
type TopicFilter struct {
	CourseName string
	Title      string
	Page       int
	Size       int
	Sort       string
	SortDesc   bool
}

// Store is the persistence interface the rest of the forum depends on.
type Store interface {
	// Users and profiles
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EnsureProfile(ctx context.Context, name string) (*Profile, error)
	AssignProfile(ctx context.Context, userID, profileID string) error

	// Courses
	CreateCourse(ctx context.Context, course *Course) error
	GetCourse(ctx context.Context, id string) (*Course, error)
	GetCourseByName(ctx context.Context, name string) (*Course, error)
	ListCourses(ctx context.Context) ([]*Course, error)

	// Topics
	CreateTopic(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, id string) (*Topic, error)
	GetTopicDetail(ctx context.Context, id string) (*TopicDetail, error)
	ListTopics(ctx context.Context, filter TopicFilter) ([]*TopicSummary, int, error)
	UpdateTopic(ctx context.Context, topic *Topic) error
	DeleteTopic(ctx context.Context, id string) error

	// Replies
	CreateReply(ctx context.Context, reply *Reply) error
	MarkSolution(ctx context.Context, topicID, replyID string) error

	Close() error
}
