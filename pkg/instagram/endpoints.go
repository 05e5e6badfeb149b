package instagram

import (
	"fmt"
	"net/url"
)

// BaseURL is the Instagram private API base URL.
const BaseURL = "https://i.instagram.com/api/v1"

// LoginURL returns the account login endpoint.
func LoginURL() string {
	return BaseURL + "/accounts/login/"
}

// TimelineURL returns the timeline feed endpoint, used as a cheap read-only
// probe for session validity.
func TimelineURL() string {
	return BaseURL + "/feed/timeline/"
}

// OembedURL returns the oembed lookup endpoint for a post URL. The response
// carries the numeric media identifier.
func OembedURL(postURL string) string {
	return fmt.Sprintf("%s/oembed/?url=%s", BaseURL, url.QueryEscape(postURL))
}

// MediaInfoURL returns the media metadata endpoint for a media pk.
func MediaInfoURL(mediaPk int64) string {
	return fmt.Sprintf("%s/media/%d/info/", BaseURL, mediaPk)
}

// MediaLikersURL returns the endpoint listing accounts that liked a media.
func MediaLikersURL(mediaPk int64) string {
	return fmt.Sprintf("%s/media/%d/likers/", BaseURL, mediaPk)
}

// UserInfoURL returns the extended profile endpoint for a user pk.
func UserInfoURL(userPk int64) string {
	return fmt.Sprintf("%s/users/%d/info/", BaseURL, userPk)
}

// DirectSendURL returns the direct-message broadcast endpoint.
func DirectSendURL() string {
	return BaseURL + "/direct_v2/threads/broadcast/text/"
}

// DirectInboxURL returns the direct inbox endpoint limited to the given
// number of threads.
func DirectInboxURL(amount int) string {
	return fmt.Sprintf("%s/direct_v2/inbox/?limit=%d", BaseURL, amount)
}
