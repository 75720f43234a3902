package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeComposite = "composite"

	ParticularTypePost = "post"
	ParticularTypeItem = "item"
)

func IsParticularType(value string) bool {
	return value == ParticularTypePost || value == ParticularTypeItem
}

// Association is a package ref pointing at another archive item.
type Association struct {
	ResidRef string `bson:"residRef,omitempty" json:"residRef,omitempty"`
	Type     string `bson:"type,omitempty" json:"type,omitempty"`
	GUID     string `bson:"guid,omitempty" json:"guid,omitempty"`
	Headline string `bson:"headline,omitempty" json:"headline,omitempty"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`

	// Item is filled on read and never stored.
	Item *Resolution `bson:"-" json:"item,omitempty"`
}

// Resolution holds the outcome of looking up an association's residRef.
// A nil Item means the reference points at nothing and renders as null.
type Resolution struct {
	Item *Item
}

func (r *Resolution) MarshalJSON() ([]byte, error) {
	if r == nil || r.Item == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.Item)
}

func (r *Resolution) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.Item = nil
		return nil
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	r.Item = &item
	return nil
}

type Group struct {
	ID   string        `bson:"id" json:"id"`
	Role string        `bson:"role,omitempty" json:"role,omitempty"`
	Refs []Association `bson:"refs,omitempty" json:"refs,omitempty"`
}

// Package is the generic composite item every post is built on.
type Package struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	GUID            string             `bson:"guid,omitempty" json:"guid,omitempty"`
	Type            string             `bson:"type" json:"type"`
	Headline        string             `bson:"headline,omitempty" json:"headline,omitempty"`
	Groups          []Group            `bson:"groups,omitempty" json:"groups,omitempty"`
	FirstCreated    time.Time          `bson:"firstcreated" json:"firstcreated"`
	VersionCreated  time.Time          `bson:"versioncreated" json:"versioncreated"`
	OriginalCreator string             `bson:"original_creator,omitempty" json:"original_creator,omitempty"`
	VersionCreator  string             `bson:"version_creator,omitempty" json:"version_creator,omitempty"`
	CurrentVersion  int                `bson:"_current_version" json:"_current_version"`
	Created         time.Time          `bson:"_created" json:"_created"`
	Updated         time.Time          `bson:"_updated" json:"_updated"`
}

func (p *Package) GetId() string {
	return p.ID.Hex()
}

// Associations returns the refs of every group, in group order.
func (p *Package) Associations() []Association {
	var assocs []Association
	for _, group := range p.Groups {
		assocs = append(assocs, group.Refs...)
	}
	return assocs
}

// WithAssociations returns a copy of the groups with their refs replaced by
// assocs, which must be laid out the way Associations returned them.
func (p *Package) WithAssociations(assocs []Association) []Group {
	if p.Groups == nil {
		return nil
	}
	groups := make([]Group, len(p.Groups))
	offset := 0
	for i, group := range p.Groups {
		groups[i] = group
		if group.Refs == nil {
			continue
		}
		groups[i].Refs = append([]Association(nil), assocs[offset:offset+len(group.Refs)]...)
		offset += len(group.Refs)
	}
	return groups
}

type Post struct {
	Package        `bson:",inline"`
	Blog           primitive.ObjectID `bson:"blog,omitempty" json:"blog"`
	ParticularType string             `bson:"particular_type" json:"particular_type"`

	Links *Links `bson:"-" json:"_links,omitempty"`
}

// Clone copies the post deep enough that groups and refs can be changed
// without touching the original.
func (p *Post) Clone() *Post {
	c := *p
	c.Groups = p.WithAssociations(p.Associations())
	if p.Links != nil {
		links := *p.Links
		c.Links = &links
	}
	return &c
}

// AsItem is the archive item view of a post.
func (p *Post) AsItem() *Item {
	return &Item{
		ID:              p.ID,
		GUID:            p.GUID,
		Type:            p.Type,
		Headline:        p.Headline,
		OriginalCreator: p.OriginalCreator,
		FirstCreated:    p.FirstCreated,
		VersionCreated:  p.VersionCreated,
		Created:         p.Created,
		Updated:         p.Updated,
	}
}

// PostUpdate is a partial update; nil fields are left untouched.
type PostUpdate struct {
	Headline       *string             `bson:"headline,omitempty"`
	Groups         *[]Group            `bson:"groups,omitempty"`
	Blog           *primitive.ObjectID `bson:"blog,omitempty"`
	ParticularType *string             `bson:"particular_type,omitempty"`
	VersionCreated *time.Time          `bson:"versioncreated,omitempty"`
	VersionCreator *string             `bson:"version_creator,omitempty"`
}

// Apply writes the update onto post.
func (u *PostUpdate) Apply(post *Post) {
	if u.Headline != nil {
		post.Headline = *u.Headline
	}
	if u.Groups != nil {
		post.Groups = *u.Groups
	}
	if u.Blog != nil {
		post.Blog = *u.Blog
	}
	if u.ParticularType != nil {
		post.ParticularType = *u.ParticularType
	}
	if u.VersionCreated != nil {
		post.VersionCreated = *u.VersionCreated
	}
	if u.VersionCreator != nil {
		post.VersionCreator = *u.VersionCreator
	}
}

type Item struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	GUID            string                 `bson:"guid,omitempty" json:"guid,omitempty"`
	Type            string                 `bson:"type" json:"type"`
	Headline        string                 `bson:"headline,omitempty" json:"headline,omitempty"`
	BodyHTML        string                 `bson:"body_html,omitempty" json:"body_html,omitempty"`
	Meta            map[string]interface{} `bson:"meta,omitempty" json:"meta,omitempty"`
	OriginalCreator string                 `bson:"original_creator,omitempty" json:"original_creator,omitempty"`
	FirstCreated    time.Time              `bson:"firstcreated" json:"firstcreated"`
	VersionCreated  time.Time              `bson:"versioncreated" json:"versioncreated"`
	Created         time.Time              `bson:"_created" json:"_created"`
	Updated         time.Time              `bson:"_updated" json:"_updated"`
}

func (i *Item) GetId() string {
	return i.ID.Hex()
}

type Blog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	OriginalCreator string             `bson:"original_creator,omitempty" json:"original_creator,omitempty"`
	Created         time.Time          `bson:"_created" json:"_created"`
	Updated         time.Time          `bson:"_updated" json:"_updated"`
}

// Version is an immutable snapshot of a post.
type Version struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DocumentID     primitive.ObjectID `bson:"_id_document" json:"_id_document"`
	Number         int                `bson:"_current_version" json:"_current_version"`
	Type           string             `bson:"type" json:"type"`
	VersionCreated time.Time          `bson:"versioncreated" json:"versioncreated"`
	VersionCreator string             `bson:"version_creator,omitempty" json:"version_creator,omitempty"`
	Post           Post               `bson:"post" json:"post"`
}

func NewVersion(post *Post) *Version {
	snapshot := post.Clone()
	snapshot.Links = nil
	return &Version{
		DocumentID:     post.ID,
		Number:         post.CurrentVersion,
		Type:           post.Type,
		VersionCreated: post.VersionCreated,
		VersionCreator: post.VersionCreator,
		Post:           *snapshot,
	}
}

// StampCreationFields sets firstcreated and versioncreated when they are unset.
func StampCreationFields(p *Package, now time.Time) {
	if p.FirstCreated.IsZero() {
		p.FirstCreated = now
	}
	if p.VersionCreated.IsZero() {
		p.VersionCreated = now
	}
}

type Link struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

type Links struct {
	Self Link `json:"self"`
}

// LinkTemplate href may use {location} and {id} placeholders.
type LinkTemplate struct {
	Title string
	Href  string
}

func BuildSelfLink(tmpl LinkTemplate, id, location string) *Links {
	href := strings.NewReplacer("{location}", location, "{id}", id).Replace(tmpl.Href)
	return &Links{Self: Link{Title: tmpl.Title, Href: href}}
}
