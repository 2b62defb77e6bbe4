package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SocAIty/fastsdk-go/model"
	"github.com/SocAIty/fastsdk-go/pkg/apperror"
)

const versionIndexFile = "version_index.json"

// FileSystemStore is the default backing store spec.md §4.4 names: one
// {id}.json file per service plus a version_index.json mapping id to
// Version, written on every Save so a restart can detect which services
// actually need re-parsing.
type FileSystemStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileSystemStore builds a FileSystemStore rooted at dir, creating it
// if necessary.
func NewFileSystemStore(dir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not create registry directory %s", dir))
	}
	return &FileSystemStore{dir: dir}, nil
}

func (s *FileSystemStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileSystemStore) Load(ctx context.Context, id string) (*model.ServiceDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStoreMiss
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not read registry entry %s", id))
	}
	var svc model.ServiceDefinition
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("registry entry %s is corrupt", id))
	}
	return &svc, nil
}

func (s *FileSystemStore) Save(ctx context.Context, svc *model.ServiceDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(svc, "", "  ")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "could not marshal registry entry")
	}
	if err := os.WriteFile(s.path(svc.ID), data, 0o644); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not write registry entry %s", svc.ID))
	}
	return s.updateVersionIndex(svc.ID, svc.Version)
}

func (s *FileSystemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("could not delete registry entry %s", id))
	}
	return s.updateVersionIndex(id, "")
}

func (s *FileSystemStore) List(ctx context.Context) ([]*model.ServiceDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not list registry directory")
	}
	var out []*model.ServiceDefinition
	for _, e := range entries {
		if e.IsDir() || e.Name() == versionIndexFile || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var svc model.ServiceDefinition
		if err := json.Unmarshal(data, &svc); err != nil {
			continue
		}
		out = append(out, &svc)
	}
	return out, nil
}

func (s *FileSystemStore) VersionIndex(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readVersionIndex()
}

func (s *FileSystemStore) readVersionIndex() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, versionIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, "could not read version index")
	}
	var idx map[string]string
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "version index is corrupt")
	}
	return idx, nil
}

// updateVersionIndex must be called with s.mu held.
func (s *FileSystemStore) updateVersionIndex(id, version string) error {
	idx, err := s.readVersionIndex()
	if err != nil {
		return err
	}
	if version == "" {
		delete(idx, id)
	} else {
		idx[id] = version
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "could not marshal version index")
	}
	return os.WriteFile(filepath.Join(s.dir, versionIndexFile), data, 0o644)
}
