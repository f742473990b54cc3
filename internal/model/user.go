// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an internal account record linked one-to-one to an
// identity issued by the external identity provider.
//
// WHY ExternalID string?
// The provider's subject is an opaque stable identifier (a UUID-ish string),
// not something we control or want as our primary key. We keep our own
// numeric ID for relations and store the provider's subject with a UNIQUE
// constraint so one external identity maps to exactly one account.
//
// WHY Name string (not *string)?
// The display name is optional — derived from the email on first login and
// editable later. An empty string is a perfectly good "no name yet" value
// and is simpler to work with than a nullable pointer.
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"externalId"` // identity provider's stable subject
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PostOwner is the slice of a User that's safe to embed in public post
// responses: enough for a byline and for clients to recognise their own
// posts, nothing more.
type PostOwner struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
}
