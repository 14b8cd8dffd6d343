package main

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"
	"github.com/cronokirby/saferith"

	"github.com/provelab/sigma/pkg/math/group"
	"github.com/provelab/sigma/pkg/protocol"
	"github.com/provelab/sigma/pkg/sigma"
	sigmaand "github.com/provelab/sigma/pkg/sigma/and"
	sigmadh "github.com/provelab/sigma/pkg/sigma/dh"
	sigmadlog "github.com/provelab/sigma/pkg/sigma/dlog"
)

// Config mirrors the TOML file both parties load. The witness section
// is only meaningful to the prover, but the verifier uses the same
// file to derive the public statement, the way the reference runner
// does.
type Config struct {
	Protocol string        `toml:"protocol"`
	T        int           `toml:"t"`
	Group    GroupConfig   `toml:"group"`
	Witness  WitnessConfig `toml:"witness"`
	Net      NetConfig     `toml:"net"`
}

type GroupConfig struct {
	Backend string `toml:"backend"` // "zp" or "secp256k1"
	P       string `toml:"p"`
	Q       string `toml:"q"`
	G       string `toml:"g"`
}

type WitnessConfig struct {
	// W is the discrete log being proven, as a decimal string.
	W string `toml:"w"`
	// S defines the second DH base as h = g^s.
	S string `toml:"s"`
}

type NetConfig struct {
	Address string `toml:"address"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.T <= 0 {
		return nil, fmt.Errorf("config: t must be positive, got %d", cfg.T)
	}
	switch cfg.Protocol {
	case "dlog", "dh", "and":
	default:
		return nil, fmt.Errorf("config: unknown protocol %q", cfg.Protocol)
	}
	return cfg, nil
}

func (cfg *Config) BuildGroup() (group.Group, error) {
	switch cfg.Group.Backend {
	case "secp256k1":
		return group.Secp256k1(), nil
	case "zp":
		p, ok := new(big.Int).SetString(cfg.Group.P, 10)
		if !ok {
			return nil, fmt.Errorf("config: invalid p %q", cfg.Group.P)
		}
		q, ok := new(big.Int).SetString(cfg.Group.Q, 10)
		if !ok {
			return nil, fmt.Errorf("config: invalid q %q", cfg.Group.Q)
		}
		g, ok := new(big.Int).SetString(cfg.Group.G, 10)
		if !ok {
			return nil, fmt.Errorf("config: invalid g %q", cfg.Group.G)
		}
		return group.NewZp(p, q, g)
	default:
		return nil, fmt.Errorf("config: unknown group backend %q", cfg.Group.Backend)
	}
}

func (cfg *Config) scalar(field, value string, q *saferith.Modulus) (*saferith.Nat, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid %s %q", field, value)
	}
	n := new(saferith.Nat).SetBig(v, v.BitLen())
	return n.Mod(n, q), nil
}

// statement derives the public values both parties agree on from the
// configured witness, exactly like the reference runner: h = g^w for
// dlog, (h, u, v) = (g^s, g^w, h^w) for dh.
func (cfg *Config) statement(grp group.Group) (w, s *saferith.Nat, err error) {
	q := grp.Order()
	w, err = cfg.scalar("witness.w", cfg.Witness.W, q)
	if err != nil {
		return nil, nil, err
	}
	s = new(saferith.Nat).SetUint64(0)
	if cfg.Protocol == "dh" || cfg.Protocol == "and" {
		s, err = cfg.scalar("witness.s", cfg.Witness.S, q)
		if err != nil {
			return nil, nil, err
		}
	}
	return w, s, nil
}

func (cfg *Config) dlogInput(grp group.Group, w *saferith.Nat) *sigmadlog.Input {
	return &sigmadlog.Input{H: grp.Generator().Exp(w), W: w}
}

func (cfg *Config) dhInput(grp group.Group, w, s *saferith.Nat) *sigmadh.Input {
	h := grp.Generator().Exp(s)
	return &sigmadh.Input{
		H: h,
		U: grp.Generator().Exp(w),
		V: h.Exp(w),
		W: w,
	}
}

// BuildProver returns the prover computation and its input for the
// configured protocol.
func (cfg *Config) BuildProver(grp group.Group) (sigma.Prover, sigma.ProverInput, error) {
	w, s, err := cfg.statement(grp)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Protocol {
	case "dlog":
		prover, err := sigmadlog.NewProver(grp, cfg.T, rand.Reader)
		return prover, cfg.dlogInput(grp, w), err
	case "dh":
		prover, err := sigmadh.NewProver(grp, cfg.T, rand.Reader)
		return prover, cfg.dhInput(grp, w, s), err
	case "and":
		dlogProver, err := sigmadlog.NewProver(grp, cfg.T, rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		dhProver, err := sigmadh.NewProver(grp, cfg.T, rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		prover, err := sigmaand.NewProver([]sigma.Prover{dlogProver, dhProver}, rand.Reader)
		input := &sigmaand.Input{Inputs: []sigma.ProverInput{
			cfg.dlogInput(grp, w),
			cfg.dhInput(grp, w, s),
		}}
		return prover, input, err
	}
	return nil, nil, fmt.Errorf("config: unknown protocol %q", cfg.Protocol)
}

// BuildVerifier returns the verifier computation and the common input
// for the configured protocol.
func (cfg *Config) BuildVerifier(grp group.Group) (sigma.Verifier, sigma.CommonInput, error) {
	w, s, err := cfg.statement(grp)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Protocol {
	case "dlog":
		verifier, err := sigmadlog.NewVerifier(grp, cfg.T, rand.Reader)
		return verifier, cfg.dlogInput(grp, w).Common(), err
	case "dh":
		verifier, err := sigmadh.NewVerifier(grp, cfg.T, rand.Reader)
		return verifier, cfg.dhInput(grp, w, s).Common(), err
	case "and":
		dlogVerifier, err := sigmadlog.NewVerifier(grp, cfg.T, rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		dhVerifier, err := sigmadh.NewVerifier(grp, cfg.T, rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		verifier, err := sigmaand.NewVerifier([]sigma.Verifier{dlogVerifier, dhVerifier}, rand.Reader)
		input := (&sigmaand.Input{Inputs: []sigma.ProverInput{
			cfg.dlogInput(grp, w),
			cfg.dhInput(grp, w, s),
		}}).Common()
		return verifier, input, err
	}
	return nil, nil, fmt.Errorf("config: unknown protocol %q", cfg.Protocol)
}

// SessionID binds both parties' envelopes to the protocol and group
// parameters in the config.
func (cfg *Config) SessionID(grp group.Group) []byte {
	return protocol.SSID(cfg.Protocol,
		[]byte(grp.Name()),
		grp.Order().Nat().Bytes(),
		[]byte(fmt.Sprintf("t=%d", cfg.T)),
	)
}
