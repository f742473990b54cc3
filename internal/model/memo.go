package model

import (
	"encoding/json"
	"time"
)

// Memo types. A memo is either a checklist or free text — the type is a
// fixed classification chosen at creation, not a state that transitions.
const (
	MemoTypeChecklist = "checklist"
	MemoTypeText      = "text"
)

// ChecklistItem is one entry of a checklist memo.
type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// MemoImage is an image embedded in a memo.
type MemoImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// MemoLink is a bookmarked URL embedded in a memo.
type MemoLink struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Memo is a personal note owned by a single user.
//
// Exactly one of Items/TextContent is semantically active, decided by Type:
// a checklist memo carries Items and an empty TextContent, a text memo the
// reverse. The service layer enforces this regardless of what the client
// sent.
//
// STRINGIFIED FIELDS:
// On the wire and in the database, items/images/urls travel as JSON-encoded
// text (stringified arrays) — that's the contract the existing clients
// speak. Internally we keep them structured; the handler and the repository
// decode at their boundaries and re-encode on the way out. The Encode*/
// Decode* helpers below are that boundary code, shared by both.
type Memo struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Type        string          `json:"type"` // MemoTypeChecklist or MemoTypeText
	Items       []ChecklistItem `json:"-"`
	TextContent string          `json:"textContent"`
	Images      []MemoImage     `json:"-"`
	URLs        []MemoLink      `json:"-"`
	UserID      int64           `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// EncodeItems renders the checklist as its stringified wire/storage form.
// An empty or nil slice encodes as "" (not "[]" and not NULL) so the
// inactive field stays a plain empty column.
func EncodeItems(items []ChecklistItem) (string, error) {
	return encodeList(len(items), items)
}

// DecodeItems parses the stringified checklist. "" decodes to nil.
func DecodeItems(s string) ([]ChecklistItem, error) {
	var items []ChecklistItem
	if err := decodeList(s, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EncodeImages renders the image list as its stringified form.
func EncodeImages(images []MemoImage) (string, error) {
	return encodeList(len(images), images)
}

// DecodeImages parses the stringified image list. "" decodes to nil.
func DecodeImages(s string) ([]MemoImage, error) {
	var images []MemoImage
	if err := decodeList(s, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// EncodeLinks renders the URL list as its stringified form.
func EncodeLinks(links []MemoLink) (string, error) {
	return encodeList(len(links), links)
}

// DecodeLinks parses the stringified URL list. "" decodes to nil.
func DecodeLinks(s string) ([]MemoLink, error) {
	var links []MemoLink
	if err := decodeList(s, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func encodeList(n int, v any) (string, error) {
	if n == 0 {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s string, out any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
