package provision

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
)

// Request field names
const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldGroup       = "group"
	FieldPermissions = "permissions_list"
)

var knownFields = map[string]bool{
	FieldUsername:    true,
	FieldPassword:    true,
	FieldGroup:       true,
	FieldPermissions: true,
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.@-]{0,31}$`)

// CreateUserRequest is a parsed create request. Nil fields were absent or null.
type CreateUserRequest struct {
	Username    *string
	Password    *string
	Group       *string
	Permissions []string
}

// ParseCreateUserRequest decodes body, reporting the first unknown key in
// document order.
func ParseCreateUserRequest(body []byte) (*CreateUserRequest, error) {
	fields, err := objectFields(body)
	if err != nil {
		return nil, err
	}

	for _, f := range fields {
		if !knownFields[f.key] {
			return nil, invalid(ErrUnknownField, f.key)
		}
	}

	req := &CreateUserRequest{}
	for _, f := range fields {
		if isNull(f.value) {
			continue
		}
		var target interface{}
		switch f.key {
		case FieldUsername:
			target = &req.Username
		case FieldPassword:
			target = &req.Password
		case FieldGroup:
			target = &req.Group
		case FieldPermissions:
			target = &req.Permissions
		}
		if err := json.Unmarshal(f.value, target); err != nil {
			return nil, invalid(ErrMalformedRequest, f.key)
		}
	}
	if req.Permissions != nil {
		for _, p := range req.Permissions {
			if p == "" {
				return nil, invalid(ErrMalformedRequest, FieldPermissions)
			}
		}
	}

	return req, nil
}

type field struct {
	key   string
	value json.RawMessage
}

// objectFields returns the members of a JSON object in document order. A
// repeated key keeps its last value, as encoding/json does.
func objectFields(body []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(ErrMalformedRequest, "")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalid(ErrMalformedRequest, "")
	}

	var fields []field
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, invalid(ErrMalformedRequest, "")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, invalid(ErrMalformedRequest, "")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, invalid(ErrMalformedRequest, "")
		}

		if i, seen := index[key]; seen {
			fields[i].value = value
			continue
		}
		index[key] = len(fields)
		fields = append(fields, field{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, invalid(ErrMalformedRequest, "")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(ErrMalformedRequest, "")
	}

	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// ValidUsername reports whether name may be used as a username
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}
