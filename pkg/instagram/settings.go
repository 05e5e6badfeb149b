package instagram

import (
	"fmt"

	"github.com/google/uuid"
)

// DeviceSettings describes the device identity presented to Instagram. The
// values must stay stable across logins for the same account, otherwise the
// platform treats every session as a new device and challenges it.
type DeviceSettings struct {
	Manufacturer    string `json:"manufacturer"`
	Device          string `json:"device"`
	Model           string `json:"model"`
	AndroidVersion  int    `json:"android_version"`
	AndroidRelease  string `json:"android_release"`
	DeviceID        string `json:"device_id"`
	PhoneID         string `json:"phone_id"`
	ADID            string `json:"adid"`
	AndroidDeviceID string `json:"android_device_id"`
}

// Settings is the serializable authentication state of a client: device
// identity, client UUID and the cookies backing the logged-in session.
type Settings struct {
	Username  string            `json:"username"`
	UUID      string            `json:"uuid"`
	Device    DeviceSettings    `json:"device_settings"`
	UserAgent string            `json:"user_agent"`
	Cookies   map[string]string `json:"cookies"`
}

// NewSettings builds fresh settings with a fixed Samsung Galaxy S10 identity
// and newly generated installation identifiers.
func NewSettings(username string) *Settings {
	device := DeviceSettings{
		Manufacturer:    "Samsung",
		Device:          "SM-G973F",
		Model:           "SM-G973F",
		AndroidVersion:  28,
		AndroidRelease:  "9",
		DeviceID:        uuid.NewString(),
		PhoneID:         uuid.NewString(),
		ADID:            uuid.NewString(),
		AndroidDeviceID: "android-" + uuid.NewString()[:16],
	}
	return &Settings{
		Username:  username,
		UUID:      uuid.NewString(),
		Device:    device,
		UserAgent: userAgentFor(device),
		Cookies:   make(map[string]string),
	}
}

// Normalize fills in any identifier or device field left empty by an older
// artifact, keeping values that are already present.
func (s *Settings) Normalize() {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	if s.Device.Manufacturer == "" {
		s.Device.Manufacturer = "Samsung"
	}
	if s.Device.Device == "" {
		s.Device.Device = "SM-G973F"
	}
	if s.Device.Model == "" {
		s.Device.Model = "SM-G973F"
	}
	if s.Device.AndroidVersion == 0 {
		s.Device.AndroidVersion = 28
	}
	if s.Device.AndroidRelease == "" {
		s.Device.AndroidRelease = "9"
	}
	if s.Device.DeviceID == "" {
		s.Device.DeviceID = uuid.NewString()
	}
	if s.Device.PhoneID == "" {
		s.Device.PhoneID = uuid.NewString()
	}
	if s.Device.ADID == "" {
		s.Device.ADID = uuid.NewString()
	}
	if s.Device.AndroidDeviceID == "" {
		s.Device.AndroidDeviceID = "android-" + uuid.NewString()[:16]
	}
	if s.UserAgent == "" {
		s.UserAgent = userAgentFor(s.Device)
	}
	if s.Cookies == nil {
		s.Cookies = make(map[string]string)
	}
}

func userAgentFor(d DeviceSettings) string {
	return fmt.Sprintf(
		"Instagram 269.0.0.18.75 Android (%d/%s; 420dpi; 1080x2042; %s; %s; %s; exynos9820; en_US)",
		d.AndroidVersion, d.AndroidRelease, d.Manufacturer, d.Model, d.Device,
	)
}
