package appscript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/platform-mesh/room-access-proxy/pkg/authorization"
)

const (
	fieldOK       = "ok"
	fieldEntryURL = "join_url"
	fieldContact  = "whatsapp"
)

// Normalize turns the body of a script answer into a Response.
//
// A body that is not JSON means the service is unreachable. Valid JSON that
// is not an object, or whose ok flag is not truthy, is a rejection.
func Normalize(body []byte) authorization.Response {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return authorization.Unreachable(fmt.Errorf("decoding response: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return authorization.Unreachable(errors.New("decoding response: trailing data"))
	}

	obj, ok := raw.(map[string]any)
	if !ok || !truthy(obj[fieldOK]) {
		return authorization.Unauthorized()
	}

	return authorization.Authorized(text(obj[fieldEntryURL]), text(obj[fieldContact]))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "false", "0", "no":
			return false
		}
		return true
	default:
		return false
	}
}

// text reads an optional string field. Spreadsheets often hand phone numbers
// back as numbers, so those are kept in their literal form.
func text(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	}
	if s == "" {
		return nil
	}
	return &s
}
