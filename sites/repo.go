package sites

type WebsiteRepo interface {
	Upsert(website *Website) error
	Delete(id string) error
	Get(id string) (*Website, error)
	List() ([]*Website, error)
}

type BlockedURLRepo interface {
	Add(blocked *BlockedURL) error
	Delete(id string) error
	List() ([]*BlockedURL, error)
	IsBlocked(rawURL string) (bool, error)
}
