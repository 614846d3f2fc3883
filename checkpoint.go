package az

import (
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/portstow/az/dualnet"
)

const (
	metaFile  = "meta.json"
	modelFile = "checkpoint.model"
)

// metaData is the JSON-serialized sidecar alongside the gob-encoded
// network weights.
type metaData struct {
	Config Config `json:"config"`
}

// Save writes cfg and net's weights into dir, creating it if needed.
func Save(dir string, cfg Config, net *dualnet.Network) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WithStack(err)
	}

	metaBytes, err := json.MarshalIndent(metaData{Config: cfg}, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), metaBytes, 0644); err != nil {
		return errors.WithStack(err)
	}

	f, err := os.OpenFile(filepath.Join(dir, modelFile), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return errors.WithStack(gob.NewEncoder(f).Encode(net))
}

// Load reads back a Config and Network previously written by Save.
func Load(dir string) (Config, *dualnet.Network, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return Config{}, nil, errors.WithStack(err)
	}
	var meta metaData
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return Config{}, nil, errors.WithStack(err)
	}

	f, err := os.Open(filepath.Join(dir, modelFile))
	if err != nil {
		return Config{}, nil, errors.WithStack(err)
	}
	defer f.Close()

	net, err := dualnet.NewNetwork(meta.Config.NNConf)
	if err != nil {
		return Config{}, nil, err
	}
	if err := gob.NewDecoder(f).Decode(net); err != nil {
		return Config{}, nil, errors.WithStack(err)
	}
	return meta.Config, net, nil
}
