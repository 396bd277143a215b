package routerdb

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/go-i2p/common/base64"
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// FileDatabase is a minimal on-disk Database, adapted from the teacher's
// lib/netdb.StdNetDB: an in-memory cache backed by one file per entry under
// a skiplist-style directory, mutex-guarded. It is not the full network
// database (spec §6 leaves that out of this core's scope entirely) — just
// enough persistence for cmd/routerd to have somewhere real to read and
// write router info and local config from.
type FileDatabase struct {
	dir string

	mu      sync.Mutex
	infos   map[common.Hash][]byte
	configs map[string][]byte
}

// NewFileDatabase opens (creating if absent) a FileDatabase rooted at dir.
func NewFileDatabase(dir string) (*FileDatabase, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, oops.Wrapf(err, "routerdb: create data directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o700); err != nil {
		return nil, oops.Wrapf(err, "routerdb: create config directory")
	}
	return &FileDatabase{
		dir:     dir,
		infos:   make(map[common.Hash][]byte),
		configs: make(map[string][]byte),
	}, nil
}

func (f *FileDatabase) routerInfoPath(hash common.Hash) string {
	name := base64.EncodeToString(hash[:])
	return filepath.Join(f.dir, "r"+string(name[0]), "routerInfo-"+name+".dat")
}

func (f *FileDatabase) configPath(name string) string {
	return filepath.Join(f.dir, "config", name+".dat")
}

// GetConfigValue implements routerdb.Database.
func (f *FileDatabase) GetConfigValue(name string) ([]byte, error) {
	f.mu.Lock()
	if v, ok := f.configs[name]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	data, err := os.ReadFile(f.configPath(name))
	if err != nil {
		return nil, oops.Wrapf(err, "routerdb: read config value %q", name)
	}
	f.mu.Lock()
	f.configs[name] = data
	f.mu.Unlock()
	return data, nil
}

// SetConfigValue implements routerdb.Database.
func (f *FileDatabase) SetConfigValue(name string, value []byte) error {
	if err := os.WriteFile(f.configPath(name), value, 0o600); err != nil {
		return oops.Wrapf(err, "routerdb: write config value %q", name)
	}
	f.mu.Lock()
	f.configs[name] = value
	f.mu.Unlock()
	return nil
}

// GetRouterInfo implements routerdb.Database.
func (f *FileDatabase) GetRouterInfo(hash common.Hash) ([]byte, error) {
	f.mu.Lock()
	if v, ok := f.infos[hash]; ok {
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	data, err := os.ReadFile(f.routerInfoPath(hash))
	if err != nil {
		return nil, oops.Wrapf(err, "routerdb: read router info")
	}
	f.mu.Lock()
	f.infos[hash] = data
	f.mu.Unlock()
	return data, nil
}

// SetRouterInfo implements routerdb.Database.
func (f *FileDatabase) SetRouterInfo(hash common.Hash, info []byte) error {
	path := f.routerInfoPath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return oops.Wrapf(err, "routerdb: create skiplist directory")
	}
	if err := os.WriteFile(path, info, 0o600); err != nil {
		return oops.Wrapf(err, "routerdb: write router info")
	}
	f.mu.Lock()
	f.infos[hash] = info
	f.mu.Unlock()
	log.WithFields(logger.Fields{"at": "FileDatabase.SetRouterInfo", "hash": hash}).Debug("stored router info")
	return nil
}

// GetAllHashes implements routerdb.Database by scanning every skiplist
// subdirectory, matching the teacher's SkiplistFile naming convention
// (`r<firstchar>/routerInfo-<base64hash>.dat`).
func (f *FileDatabase) GetAllHashes() ([]common.Hash, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, oops.Wrapf(err, "routerdb: list data directory")
	}
	var hashes []common.Hash
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) != 2 || e.Name()[0] != 'r' {
			continue
		}
		files, err := os.ReadDir(filepath.Join(f.dir, e.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			name := file.Name()
			if len(name) < len("routerInfo-.dat")+1 {
				continue
			}
			b64 := name[len("routerInfo-") : len(name)-len(".dat")]
			raw, err := base64.DecodeString(b64)
			if err != nil || len(raw) != 32 {
				continue
			}
			var h common.Hash
			copy(h[:], raw)
			hashes = append(hashes, h)
		}
	}
	return hashes, nil
}

var _ Database = (*FileDatabase)(nil)
