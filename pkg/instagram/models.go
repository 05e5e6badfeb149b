package instagram

// Account is an Instagram account as returned by the API. Biography and the
// verification flag are only populated by UserInfo; liker lists carry the
// short form.
type Account struct {
	Pk            int64  `json:"pk"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	IsPrivate     bool   `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
	Biography     string `json:"biography"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// MediaInfo is the subset of post metadata the application needs.
type MediaInfo struct {
	Pk            int64
	Caption       string
	OwnerUsername string
	LikeCount     int
}

// DirectThread is a direct-message conversation with its most recent messages
// first.
type DirectThread struct {
	ThreadID string       `json:"thread_id"`
	Users    []Account    `json:"users"`
	Items    []ThreadItem `json:"items"`
}

// ThreadItem is a single message inside a direct thread. Text is empty for
// non-text items (media, likes).
type ThreadItem struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Text     string `json:"text"`
}

// apiEnvelope is the common status envelope on private API responses.
type apiEnvelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
	Challenge *struct {
		URL     string `json:"url"`
		APIPath string `json:"api_path"`
	} `json:"challenge"`
}

type captionNode struct {
	Text string `json:"text"`
}

type mediaItem struct {
	Pk        int64        `json:"pk"`
	Caption   *captionNode `json:"caption"`
	User      Account      `json:"user"`
	LikeCount int          `json:"like_count"`
}

type mediaInfoResponse struct {
	apiEnvelope
	Items []mediaItem `json:"items"`
}

type likersResponse struct {
	apiEnvelope
	Users []Account `json:"users"`
}

type userInfoResponse struct {
	apiEnvelope
	User Account `json:"user"`
}

type loginResponse struct {
	apiEnvelope
	LoggedInUser Account `json:"logged_in_user"`
}

type oembedResponse struct {
	apiEnvelope
	MediaID string `json:"media_id"`
}

type inboxResponse struct {
	apiEnvelope
	Inbox struct {
		Threads []DirectThread `json:"threads"`
	} `json:"inbox"`
}
