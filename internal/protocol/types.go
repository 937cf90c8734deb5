package protocol

import (
	"realtime-presence/internal/feed"
	"realtime-presence/internal/session"
)

// Type is the frame discriminator.
type Type string

// Inbound frame types.
const (
	TypeUserJoin    Type = "USER_JOIN"
	TypePageChange  Type = "PAGE_CHANGE"
	TypePhotoUpload Type = "PHOTO_UPLOAD"
	TypeResetApp    Type = "RESET_APP"
)

// Outbound frame types.
const (
	TypeInitPhotos     Type = "INIT_PHOTOS"
	TypeExistingUsers  Type = "EXISTING_USERS"
	TypeUserJoined     Type = "USER_JOINED"
	TypeUserPageUpdate Type = "USER_PAGE_UPDATE"
	TypeNewPhoto       Type = "NEW_PHOTO"
	TypeAppReset       Type = "APP_RESET"
	TypeUserLeft       Type = "USER_LEFT"
)

// Inbound is a validated client frame.
type Inbound interface {
	inboundType() Type
}

// UserJoin announces the sender as a participant.
type UserJoin struct {
	Name    string
	Avatar  string
	IsAdmin bool
	Page    int
}

// PageChange moves the sender to Page.
type PageChange struct {
	Page int
}

// PhotoUpload shares an image with every participant.
type PhotoUpload struct {
	URL     string
	Caption string
}

// ResetApp asks the relay to clear all state. Only honoured for admins.
type ResetApp struct{}

func (UserJoin) inboundType() Type    { return TypeUserJoin }
func (PageChange) inboundType() Type  { return TypePageChange }
func (PhotoUpload) inboundType() Type { return TypePhotoUpload }
func (ResetApp) inboundType() Type    { return TypeResetApp }

// Outbound is a server frame ready to be encoded.
type Outbound interface {
	MessageType() Type
}

type InitPhotos struct {
	Type   Type         `json:"type"`
	Photos []feed.Photo `json:"photos"`
}

type ExistingUsers struct {
	Type  Type                  `json:"type"`
	Users []session.Participant `json:"users"`
}

type UserJoined struct {
	Type Type                `json:"type"`
	User session.Participant `json:"user"`
}

type UserPageUpdate struct {
	Type   Type   `json:"type"`
	UserID string `json:"userId"`
	Page   int    `json:"page"`
}

type NewPhoto struct {
	Type  Type       `json:"type"`
	Photo feed.Photo `json:"photo"`
}

type AppReset struct {
	Type Type `json:"type"`
}

type UserLeft struct {
	Type   Type   `json:"type"`
	UserID string `json:"userId"`
}

func (m InitPhotos) MessageType() Type     { return m.Type }
func (m ExistingUsers) MessageType() Type  { return m.Type }
func (m UserJoined) MessageType() Type     { return m.Type }
func (m UserPageUpdate) MessageType() Type { return m.Type }
func (m NewPhoto) MessageType() Type       { return m.Type }
func (m AppReset) MessageType() Type       { return m.Type }
func (m UserLeft) MessageType() Type       { return m.Type }

// NewInitPhotos never encodes a nil slice, clients expect an array.
func NewInitPhotos(photos []feed.Photo) InitPhotos {
	if photos == nil {
		photos = []feed.Photo{}
	}
	return InitPhotos{Type: TypeInitPhotos, Photos: photos}
}

func NewExistingUsers(users []session.Participant) ExistingUsers {
	if users == nil {
		users = []session.Participant{}
	}
	return ExistingUsers{Type: TypeExistingUsers, Users: users}
}

func NewUserJoined(user session.Participant) UserJoined {
	return UserJoined{Type: TypeUserJoined, User: user}
}

func NewUserPageUpdate(userID string, page int) UserPageUpdate {
	return UserPageUpdate{Type: TypeUserPageUpdate, UserID: userID, Page: page}
}

func NewNewPhoto(photo feed.Photo) NewPhoto {
	return NewPhoto{Type: TypeNewPhoto, Photo: photo}
}

func NewAppReset() AppReset {
	return AppReset{Type: TypeAppReset}
}

func NewUserLeft(userID string) UserLeft {
	return UserLeft{Type: TypeUserLeft, UserID: userID}
}
