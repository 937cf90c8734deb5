package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"

	"realtime-presence/internal/session"
)

// ErrMalformed marks frames that fail to parse or miss required fields.
var ErrMalformed = errors.New("malformed frame")

type envelope struct {
	Type *string `json:"type"`
}

type userJoinWire struct {
	Name    *string `json:"name"`
	Avatar  *string `json:"avatar"`
	IsAdmin *bool   `json:"isAdmin"`
	Page    *int    `json:"page"`
}

type pageChangeWire struct {
	Page *int `json:"page"`
}

type photoUploadWire struct {
	URL     *string `json:"url"`
	Caption *string `json:"caption"`
}

// Decode parses one client frame. Every failure wraps ErrMalformed.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, malformed(err, "parse frame")
	}
	if env.Type == nil {
		return nil, errors.Wrap(ErrMalformed, "missing type")
	}

	switch Type(*env.Type) {
	case TypeUserJoin:
		var w userJoinWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, malformed(err, "decode USER_JOIN")
		}
		if w.Name == nil {
			return nil, errors.Wrap(ErrMalformed, "USER_JOIN: missing name")
		}
		msg := UserJoin{Name: *w.Name, Page: session.DefaultPage}
		if w.Avatar != nil {
			msg.Avatar = *w.Avatar
		}
		if w.IsAdmin != nil {
			msg.IsAdmin = *w.IsAdmin
		}
		if w.Page != nil && *w.Page != 0 {
			if *w.Page < 0 {
				return nil, errors.Wrapf(ErrMalformed, "USER_JOIN: invalid page %d", *w.Page)
			}
			msg.Page = *w.Page
		}
		return msg, nil

	case TypePageChange:
		var w pageChangeWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, malformed(err, "decode PAGE_CHANGE")
		}
		if w.Page == nil {
			return nil, errors.Wrap(ErrMalformed, "PAGE_CHANGE: missing page")
		}
		if *w.Page < 1 {
			return nil, errors.Wrapf(ErrMalformed, "PAGE_CHANGE: invalid page %d", *w.Page)
		}
		return PageChange{Page: *w.Page}, nil

	case TypePhotoUpload:
		var w photoUploadWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, malformed(err, "decode PHOTO_UPLOAD")
		}
		if w.URL == nil || *w.URL == "" {
			return nil, errors.Wrap(ErrMalformed, "PHOTO_UPLOAD: missing url")
		}
		msg := PhotoUpload{URL: *w.URL}
		if w.Caption != nil {
			msg.Caption = *w.Caption
		}
		return msg, nil

	case TypeResetApp:
		return ResetApp{}, nil

	default:
		return nil, errors.Wrapf(ErrMalformed, "unknown type %q", *env.Type)
	}
}

// Encode serializes an outbound frame.
func Encode(msg Outbound) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", msg.MessageType())
	}
	return data, nil
}

func malformed(cause error, what string) error {
	return errors.Wrapf(ErrMalformed, "%s: %v", what, cause)
}
