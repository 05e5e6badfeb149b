package instagram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"instadm/pkg/logger"
)

// Client talks to the Instagram private API on behalf of a single account.
// All failures are returned as *Error with a classified Kind; callers decide
// policy from the kind alone.
type Client struct {
	httpClient    *http.Client
	settings      *Settings
	logger        logger.Logger
	challengePath string
}

// NewClient creates a client bound to the given settings. Settings carry the
// device identity and any cookies from a previous session.
func NewClient(timeout time.Duration, settings *Settings, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	settings.Normalize()
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		settings:   settings,
		logger:     log,
	}
}

// Settings returns the client's current authentication state for persistence.
func (c *Client) Settings() *Settings {
	return c.settings
}

// SetTransport replaces the underlying HTTP transport. Used by tests.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// Login performs a fresh username/password login. On a challenge the returned
// error has KindChallengeRequired and the challenge endpoint is remembered for
// ResolveChallenge / SubmitChallengeCode.
func (c *Client) Login(username, password string) (*Account, error) {
	form := url.Values{
		"username":            {username},
		"password":            {password},
		"guid":                {c.settings.UUID},
		"device_id":           {c.settings.Device.AndroidDeviceID},
		"phone_id":            {c.settings.Device.PhoneID},
		"adid":                {c.settings.Device.ADID},
		"login_attempt_count": {"0"},
	}

	c.logger.DebugWithFields("logging in", map[string]interface{}{
		"username": username,
	})

	var resp loginResponse
	if err := c.do(http.MethodPost, LoginURL(), form, &resp); err != nil {
		return nil, err
	}

	c.settings.Username = username
	c.logger.InfoWithFields("login succeeded", map[string]interface{}{
		"username": username,
		"user_pk":  resp.LoggedInUser.Pk,
	})
	return &resp.LoggedInUser, nil
}

// TimelineFeed performs a cheap read-only request used to probe whether the
// current session is still valid.
func (c *Client) TimelineFeed() error {
	var resp struct {
		apiEnvelope
	}
	return c.do(http.MethodGet, TimelineURL(), nil, &resp)
}

// MediaIDFromURL resolves a post URL to its numeric media identifier through
// the oembed endpoint.
func (c *Client) MediaIDFromURL(postURL string) (int64, error) {
	var resp oembedResponse
	if err := c.do(http.MethodGet, OembedURL(postURL), nil, &resp); err != nil {
		return 0, err
	}
	// media_id has the form "<pk>_<owner_pk>".
	idPart := resp.MediaID
	if i := strings.IndexByte(idPart, '_'); i > 0 {
		idPart = idPart[:i]
	}
	pk, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindParsing, Message: fmt.Sprintf("unparseable media id %q", resp.MediaID)}
	}
	return pk, nil
}

// MediaInfoByURL fetches media metadata directly by post URL.
func (c *Client) MediaInfoByURL(postURL string) (*MediaInfo, error) {
	pk, err := c.MediaIDFromURL(postURL)
	if err != nil {
		return nil, err
	}
	return c.MediaInfo(pk)
}

// MediaInfo fetches caption, owner and like count for a media pk.
func (c *Client) MediaInfo(mediaPk int64) (*MediaInfo, error) {
	var resp mediaInfoResponse
	if err := c.do(http.MethodGet, MediaInfoURL(mediaPk), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, &Error{Kind: KindNotFound, Message: fmt.Sprintf("media %d not found", mediaPk), Code: http.StatusNotFound}
	}
	item := resp.Items[0]
	info := &MediaInfo{
		Pk:            item.Pk,
		OwnerUsername: item.User.Username,
		LikeCount:     item.LikeCount,
	}
	if item.Caption != nil {
		info.Caption = item.Caption.Text
	}
	return info, nil
}

// MediaLikers fetches the full ordered list of accounts that liked a media.
func (c *Client) MediaLikers(mediaPk int64) ([]Account, error) {
	c.logger.DebugWithFields("fetching media likers", map[string]interface{}{
		"media_pk": mediaPk,
	})
	var resp likersResponse
	if err := c.do(http.MethodGet, MediaLikersURL(mediaPk), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UserInfo fetches the extended profile for a user pk, including biography
// and the verification flag.
func (c *Client) UserInfo(userPk int64) (*Account, error) {
	var resp userInfoResponse
	if err := c.do(http.MethodGet, UserInfoURL(userPk), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DirectSend delivers a text direct message to a single recipient.
func (c *Client) DirectSend(text string, userPk int64) error {
	form := url.Values{
		"text":            {text},
		"recipient_users": {fmt.Sprintf("[[%d]]", userPk)},
		"action":          {"send_item"},
		"client_context":  {c.settings.UUID},
	}

	c.logger.DebugWithFields("sending direct message", map[string]interface{}{
		"user_pk": userPk,
		"length":  len(text),
	})

	var resp struct {
		apiEnvelope
	}
	return c.do(http.MethodPost, DirectSendURL(), form, &resp)
}

// DirectThreads fetches up to amount recent direct-message threads.
func (c *Client) DirectThreads(amount int) ([]DirectThread, error) {
	var resp inboxResponse
	if err := c.do(http.MethodGet, DirectInboxURL(amount), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Inbox.Threads, nil
}

// ResolveChallenge attempts the automatic resolution path for a pending
// identity challenge. It reports true when the challenge cleared without an
// out-of-band code.
func (c *Client) ResolveChallenge() (bool, error) {
	if c.challengePath == "" {
		return false, &Error{Kind: KindUnknown, Message: "no pending challenge"}
	}
	form := url.Values{
		"guid":      {c.settings.UUID},
		"device_id": {c.settings.Device.AndroidDeviceID},
		"choice":    {"0"},
	}
	var resp struct {
		apiEnvelope
		Action string `json:"action"`
	}
	if err := c.do(http.MethodPost, BaseURL+c.challengePath, form, &resp); err != nil {
		return false, err
	}
	if resp.Action == "close" {
		c.challengePath = ""
		return true, nil
	}
	return false, nil
}

// SubmitChallengeCode completes a pending challenge with a verification code
// received out of band.
func (c *Client) SubmitChallengeCode(code string) error {
	if c.challengePath == "" {
		return &Error{Kind: KindUnknown, Message: "no pending challenge"}
	}
	form := url.Values{
		"security_code": {code},
		"guid":          {c.settings.UUID},
		"device_id":     {c.settings.Device.AndroidDeviceID},
	}
	var resp struct {
		apiEnvelope
	}
	if err := c.do(http.MethodPost, BaseURL+c.challengePath, form, &resp); err != nil {
		return err
	}
	c.challengePath = ""
	return nil
}

// do performs a request, captures session cookies, classifies failures and
// decodes the JSON body into target.
func (c *Client) do(method, rawurl string, form url.Values, target interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, rawurl, body)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	req.Header.Set("User-Agent", c.settings.UserAgent)
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("X-IG-Device-ID", c.settings.UUID)
	req.Header.Set("X-IG-Android-ID", c.settings.Device.AndroidDeviceID)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	if cookie := c.cookieHeader(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method": method,
			"url":    rawurl,
			"error":  err.Error(),
		})
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	c.captureCookies(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("failed to read response body: %v", err), Code: resp.StatusCode}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      rawurl,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if apiErr := c.classify(resp.StatusCode, data); apiErr != nil {
		return apiErr
	}

	if target != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return &Error{Kind: KindParsing, Message: fmt.Sprintf("failed to parse JSON: %v", err), Code: resp.StatusCode}
		}
	}
	return nil
}

// classify is the single point translating HTTP status codes and API error
// payloads into the closed Kind set.
func (c *Client) classify(status int, body []byte) *Error {
	var env apiEnvelope
	_ = json.Unmarshal(body, &env)

	if env.Challenge != nil && env.Challenge.APIPath != "" {
		c.challengePath = env.Challenge.APIPath
	}

	if status == http.StatusTooManyRequests {
		return &Error{Kind: KindRateLimited, Message: "rate limit exceeded", Code: status}
	}

	if status == http.StatusOK && env.Status != "fail" {
		return nil
	}

	switch env.Message {
	case "login_required":
		return &Error{Kind: KindLoginRequired, Message: env.Message, Code: status}
	case "challenge_required":
		return &Error{Kind: KindChallengeRequired, Message: env.Message, Code: status}
	case "feedback_required", "rate_limit_error":
		return &Error{Kind: KindRateLimited, Message: env.Message, Code: status}
	case "Not authorized to view user":
		return &Error{Kind: KindUnauthorized, Message: env.Message, Code: status}
	}

	switch env.ErrorType {
	case "rate_limit_error":
		return &Error{Kind: KindRateLimited, Message: env.Message, Code: status}
	case "checkpoint_challenge_required":
		return &Error{Kind: KindChallengeRequired, Message: env.Message, Code: status}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Message: nonEmpty(env.Message, "unauthorized"), Code: status}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: nonEmpty(env.Message, "resource not found"), Code: status}
	case status >= http.StatusInternalServerError:
		return &Error{Kind: KindServer, Message: nonEmpty(env.Message, "server error"), Code: status}
	default:
		return &Error{Kind: KindUnknown, Message: nonEmpty(env.Message, fmt.Sprintf("unexpected status code: %d", status)), Code: status}
	}
}

func (c *Client) cookieHeader() string {
	if len(c.settings.Cookies) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(c.settings.Cookies))
	for name, value := range c.settings.Cookies {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}

func (c *Client) captureCookies(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" {
			delete(c.settings.Cookies, cookie.Name)
			continue
		}
		c.settings.Cookies[cookie.Name] = cookie.Value
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
