package gitutil

// MockOperations is a test double for Operations, grounded on the
// teacher's internal/git/operations_mock.go.
type MockOperations struct {
	Repo           bool
	Commit         string
	Branch         string
	DiffResult     map[string]ChangeStatus
	DiffErr        error
	WorkingTree    map[string]ChangeStatus
	WorkingTreeErr error
}

// NewMockOperations creates a mock with sensible defaults.
func NewMockOperations() *MockOperations {
	return &MockOperations{
		Repo:        true,
		Branch:      "main",
		DiffResult:  map[string]ChangeStatus{},
		WorkingTree: map[string]ChangeStatus{},
	}
}

func (m *MockOperations) IsRepo(string) bool        { return m.Repo }
func (m *MockOperations) CurrentCommit(string) string { return m.Commit }
func (m *MockOperations) CurrentBranch(string) string { return m.Branch }

func (m *MockOperations) DiffNameStatus(string, string) (map[string]ChangeStatus, error) {
	if m.DiffErr != nil {
		return nil, m.DiffErr
	}
	return m.DiffResult, nil
}

func (m *MockOperations) WorkingTreeStatus(string) (map[string]ChangeStatus, error) {
	if m.WorkingTreeErr != nil {
		return nil, m.WorkingTreeErr
	}
	return m.WorkingTree, nil
}
