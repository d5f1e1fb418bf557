package domain

import (
	"strings"
	"time"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Media is a guest upload shown in the gallery.
type Media struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Kind      MediaKind `json:"type"`
	FileType  string    `json:"fileType,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Size      int64     `json:"size,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m Media) IsVideo() bool {
	return m.Kind == MediaKindVideo
}

// MediaRef is the subset of a media row needed to probe its backing file.
type MediaRef struct {
	ID   string
	URL  string
	Kind MediaKind
}

type SortOption string

const (
	SortRecent SortOption = "recent"
	SortOldest SortOption = "oldest"
	SortLikes  SortOption = "likes"
)

// ParseSortOption falls back to SortRecent for anything unrecognised.
func ParseSortOption(s string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortLikes:
		return SortLikes
	default:
		return SortRecent
	}
}

type TypeFilter string

const (
	FilterAll    TypeFilter = "all"
	FilterImages TypeFilter = "images"
	FilterVideos TypeFilter = "videos"
)

// ParseTypeFilter falls back to FilterAll for anything unrecognised.
func ParseTypeFilter(s string) TypeFilter {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterImages:
		return FilterImages
	case FilterVideos:
		return FilterVideos
	default:
		return FilterAll
	}
}

// Kind reports the media kind the filter restricts to. ok is false for FilterAll.
func (f TypeFilter) Kind() (kind MediaKind, ok bool) {
	switch f {
	case FilterImages:
		return MediaKindImage, true
	case FilterVideos:
		return MediaKindVideo, true
	default:
		return "", false
	}
}

// KindFromMIME classifies an uploaded file by its MIME type.
func KindFromMIME(mime string) (MediaKind, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaKindImage, true
	case strings.HasPrefix(mime, "video/"):
		return MediaKindVideo, true
	default:
		return "", false
	}
}
