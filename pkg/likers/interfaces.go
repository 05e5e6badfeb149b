package likers

import "instadm/pkg/instagram"

// PlatformClient is the subset of the Instagram client the retrieval engine
// depends on. *instagram.Client satisfies it; tests substitute a fake.
type PlatformClient interface {
	MediaIDFromURL(postURL string) (int64, error)
	MediaInfoByURL(postURL string) (*instagram.MediaInfo, error)
	MediaInfo(mediaPk int64) (*instagram.MediaInfo, error)
	MediaLikers(mediaPk int64) ([]instagram.Account, error)
	UserInfo(userPk int64) (*instagram.Account, error)
}
