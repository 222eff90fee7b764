package board

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

// Persister loads and saves board state.
type Persister interface {
	Load() (State, error)
	Save(state State) error
}

// DefaultPath returns $SHADOW_NAV_STORE, or ~/.shadownav/board.yml.
func DefaultPath() (string, error) {
	if path := os.Getenv(constants.EnvBoardPath); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.BoardFileName), nil
}

// YAMLPersister stores the board as a YAML file. Older JSON board files load
// unchanged since JSON is valid YAML.
type YAMLPersister struct {
	mutex sync.Mutex
	path  string
}

// NewYAMLPersister creates a persister for path.
func NewYAMLPersister(path string) *YAMLPersister {
	return &YAMLPersister{path: path}
}

// Path returns the backing file.
func (p *YAMLPersister) Path() string {
	return p.path
}

// Load reads the board. A missing file is an empty board.
func (p *YAMLPersister) Load() (State, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// #nosec G304 -- path comes from the user's own configuration
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		state := State{}
		state.normalize()

		return state, nil
	}

	if err != nil {
		return State{}, fmt.Errorf("failed to read board file: %w", err)
	}

	var state State

	err = yaml.Unmarshal(data, &state)
	if err != nil {
		return State{}, fmt.Errorf("failed to parse board file %s: %w", p.path, err)
	}

	state.normalize()

	return state, nil
}

// Save writes the board, creating the parent directory if needed.
func (p *YAMLPersister) Save(state State) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	err := os.MkdirAll(filepath.Dir(p.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal board to YAML: %w", err)
	}

	err = os.WriteFile(p.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}

	return nil
}
