package selection

import "prgrip/internal/domain"

// ListModel is the selection of a pull request list panel.
type ListModel = Holder[*domain.PullRequest]

// NewListModel creates an empty pull request selection.
func NewListModel() *ListModel {
	return NewHolder[*domain.PullRequest]()
}

// SelectedPullRequest returns the selected pull request or nil.
func SelectedPullRequest(m *ListModel) *domain.PullRequest {
	pr, ok := m.Current()
	if !ok {
		return nil
	}
	return pr
}
