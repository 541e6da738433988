package report

// Store keeps imported reports
type Store interface {
	Save(report *Report) error
	Get(id string) (*Report, error)
	List() ([]Meta, error)
	Delete(id string) error
}
