package likers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"instadm/pkg/instagram"
	"instadm/pkg/logger"
	"instadm/pkg/pacing"
)

// Default pacing bounds between per-account profile lookups.
const (
	defaultPacingMin = 3500 * time.Millisecond
	defaultPacingMax = 5500 * time.Millisecond
)

// OffsetExhausted is the NextOffset sentinel meaning every liker of the post
// has been processed. The caller must reset the stored offset to zero so a
// future run starts over and picks up newly arrived likers.
const OffsetExhausted = -1

// DefaultLanguage is used when a biography is empty or detection fails.
const DefaultLanguage = "en"

// ErrResolution means a post URL could not be mapped to a media identifier
// by any resolution strategy.
var ErrResolution = errors.New("could not resolve media id from post URL")

// Liker is one enriched liking account.
type Liker struct {
	Account  instagram.Account
	Language string
}

// Page is the result of one bounded retrieval call.
type Page struct {
	Caption       string
	OwnerUsername string
	LikeCount     int
	Likers        []Liker
	HasMore       bool
	NextOffset    int
}

// Engine retrieves bounded pages of a post's likers, enriching each public
// account with profile detail and a best-effort detected language.
type Engine struct {
	pacer  pacing.Pacer
	logger logger.Logger
}

// NewEngine creates a retrieval engine using the given pacer between
// per-account enrichment calls.
func NewEngine(pacer pacing.Pacer, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = pacing.NewUniform(defaultPacingMin, defaultPacingMax)
	}
	return &Engine{pacer: pacer, logger: log}
}

// FetchPage retrieves the likers of the post at postURL in the window
// [offset, offset+batchSize). Private accounts are excluded. A session
// invalidation signal from any per-account call aborts the page immediately;
// other per-account failures skip that account.
func (e *Engine) FetchPage(ctx context.Context, client PlatformClient, postURL string, batchSize, offset int) (*Page, error) {
	mediaPk, err := e.resolveMediaPk(client, postURL)
	if err != nil {
		return nil, err
	}

	page := &Page{OwnerUsername: "unknown"}

	// Post metadata is best-effort: a failure degrades to placeholders.
	if info, err := client.MediaInfo(mediaPk); err == nil {
		page.Caption = info.Caption
		page.OwnerUsername = info.OwnerUsername
		page.LikeCount = info.LikeCount
	} else {
		e.logger.WithError(err).WithField("media_pk", mediaPk).Warn("failed to fetch post metadata")
	}

	all, err := client.MediaLikers(mediaPk)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch likers: %w", err)
	}

	end := offset + batchSize
	slice := sliceWindow(all, offset, end)

	for _, account := range slice {
		if account.IsPrivate {
			e.logger.DebugWithFields("skipping private account", map[string]interface{}{
				"username": account.Username,
			})
			if err := e.pacer.Wait(ctx); err != nil {
				return nil, err
			}
			continue
		}

		full, err := client.UserInfo(account.Pk)
		if err != nil {
			if instagram.IsSessionInvalid(err) {
				// Session integrity beats page progress: stop processing
				// at once and surface the signal to the caller.
				return nil, err
			}
			if instagram.IsUnauthorized(err) {
				e.logger.DebugWithFields("not authorized to view profile", map[string]interface{}{
					"username": account.Username,
				})
			} else {
				e.logger.WarnWithFields("failed to enrich account", map[string]interface{}{
					"username": account.Username,
					"error":    err.Error(),
				})
			}
			if err := e.pacer.Wait(ctx); err != nil {
				return nil, err
			}
			continue
		}

		enriched := account
		enriched.IsVerified = full.IsVerified
		enriched.Biography = full.Biography
		if full.ProfilePicURL != "" {
			enriched.ProfilePicURL = full.ProfilePicURL
		}

		page.Likers = append(page.Likers, Liker{
			Account:  enriched,
			Language: DetectLanguage(full.Biography),
		})

		if err := e.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if end < len(all) {
		page.HasMore = true
		page.NextOffset = end
	} else {
		page.NextOffset = OffsetExhausted
	}

	e.logger.InfoWithFields("liker page retrieved", map[string]interface{}{
		"media_pk":    mediaPk,
		"offset":      offset,
		"batch_size":  batchSize,
		"enriched":    len(page.Likers),
		"total":       len(all),
		"has_more":    page.HasMore,
		"next_offset": page.NextOffset,
	})
	return page, nil
}

// resolveMediaPk maps a post URL to its numeric media identifier, trying the
// oembed shortcut, the info-by-URL lookup and finally the local shortcode
// decoding.
func (e *Engine) resolveMediaPk(client PlatformClient, postURL string) (int64, error) {
	if pk, err := client.MediaIDFromURL(postURL); err == nil && pk != 0 {
		return pk, nil
	} else if err != nil {
		e.logger.WithError(err).Debug("oembed media id lookup failed")
	}

	if info, err := client.MediaInfoByURL(postURL); err == nil && info != nil && info.Pk != 0 {
		return info.Pk, nil
	} else if err != nil {
		e.logger.WithError(err).Debug("media info by URL lookup failed")
	}

	shortcode, err := ShortcodeFromURL(postURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if pk, err := MediaPkFromShortcode(shortcode); err == nil && pk != 0 {
		return pk, nil
	}

	return 0, ErrResolution
}

// DetectLanguage returns the ISO 639-1 code of the dominant language in the
// biography text, falling back to DefaultLanguage when the text is empty or
// no language can be determined.
func DetectLanguage(biography string) string {
	if strings.TrimSpace(biography) == "" {
		return DefaultLanguage
	}
	info := whatlanggo.Detect(biography)
	code := info.Lang.Iso6391()
	if code == "" {
		return DefaultLanguage
	}
	return code
}

func sliceWindow(all []instagram.Account, start, end int) []instagram.Account {
	if start >= len(all) {
		return nil
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
