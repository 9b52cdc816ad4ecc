package config

import (
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/Bathtor/flotsync/member"
	"github.com/pkg/errors"
)

// Structs

// Config holds all information parsed from a supplied replication group
// config file.
type Config struct {
	Group          string
	Self           string
	LogLevel       string
	PrometheusAddr string
	Member         []Member
}

// Member is one entry of the replication group roster: the member's
// hierarchical identifier and its assigned clock position.
type Member struct {
	Identifier string
	Position   int
}

// Functions

// LoadConfig takes in the path to a flotsync group config file in TOML
// syntax, places the values from the file in the corresponding struct and
// validates the roster.
func LoadConfig(configFile string) (*Config, error) {

	conf := new(Config)

	_, err := toml.DecodeFile(configFile, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read in TOML config file at '%s'", configFile)
	}

	if conf.LogLevel == "" {
		conf.LogLevel = "info"
	}

	if _, err := member.ParseGroupID(conf.Group); err != nil {
		return nil, errors.Wrap(err, "config carries an invalid group identifier")
	}

	if len(conf.Member) < 1 {
		return nil, errors.New("config defines no group members")
	}

	// Positions have to form the contiguous range 0..n-1, clock counters
	// are indexed by them.
	roster := append([]Member(nil), conf.Member...)
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Position < roster[j].Position
	})

	selfSeen := false
	for i, m := range roster {

		if m.Position != i {
			return nil, errors.Errorf("member positions are not contiguous, expected %d but found %d for '%s'", i, m.Position, m.Identifier)
		}

		if _, err := member.ParseIdentifier(m.Identifier); err != nil {
			return nil, errors.Wrapf(err, "member at position %d carries an invalid identifier", i)
		}

		if m.Identifier == conf.Self {
			selfSeen = true
		}
	}

	if conf.Self == "" {
		return nil, errors.New("config does not name the local member")
	}

	if !selfSeen {
		return nil, errors.Errorf("local member '%s' is not part of the roster", conf.Self)
	}

	conf.Member = roster

	return conf, nil
}

// GroupID returns the parsed replication group identifier.
func (c *Config) GroupID() member.GroupID {

	// Validated during LoadConfig.
	id, _ := member.ParseGroupID(c.Group)
	return id
}

// Membership builds the position-stable membership the roster defines.
func (c *Config) Membership() (*member.Membership, error) {

	m := member.NewMembership(c.GroupID())

	for _, entry := range c.Member {

		id, err := member.ParseIdentifier(entry.Identifier)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid member identifier '%s'", entry.Identifier)
		}

		if _, err := m.Add(id); err != nil {
			return nil, errors.Wrap(err, "building membership failed")
		}
	}

	return m, nil
}

// SelfPosition returns the clock position of the local member.
func (c *Config) SelfPosition() int {

	for _, m := range c.Member {

		if m.Identifier == c.Self {
			return m.Position
		}
	}

	// Unreachable after LoadConfig validation.
	return -1
}
