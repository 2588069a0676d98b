package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traffic-complexity/gridca-sim/entity"
)

func validGridConfig() Config {
	return Config{
		Control: Control{Step: ControlStep{Start: 0, Total: 100}, Mode: ModeGrid},
		Grid:    Grid{Size: 15, BlockSize: 10, RotaryMethod: "yield", MaxSpeed: 2},
		Vehicle: Vehicle{Count: 4, ObeyRatio: 1, SlowdownP: 0.3},
		Random:  Random{Seed: 42},
	}
}

func TestNewRuntimeConfig(t *testing.T) {
	rc, err := NewRuntimeConfig(validGridConfig())
	assert.Nil(t, err)
	assert.Equal(t, entity.RotaryYield, rc.Rotary)
	assert.Equal(t, int32(2), rc.LaneWidth(), "lane width defaults to 2")

	c := validGridConfig()
	c.Grid.RotaryMethod = "free"
	c.Grid.LaneWidth = 4
	rc, err = NewRuntimeConfig(c)
	assert.Nil(t, err)
	assert.Equal(t, entity.RotaryFree, rc.Rotary)
	assert.Equal(t, int32(4), rc.LaneWidth())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero total steps", func(c *Config) { c.Control.Step.Total = 0 }},
		{"negative start", func(c *Config) { c.Control.Step.Start = -1 }},
		{"unknown mode", func(c *Config) { c.Control.Mode = "both" }},
		{"zero cars", func(c *Config) { c.Vehicle.Count = 0 }},
		{"obey ratio out of range", func(c *Config) { c.Vehicle.ObeyRatio = 1.5 }},
		{"slowdown out of range", func(c *Config) { c.Vehicle.SlowdownP = -0.1 }},
		{"zero grid size", func(c *Config) { c.Grid.Size = 0 }},
		{"zero block size", func(c *Config) { c.Grid.BlockSize = 0 }},
		{"odd lane width", func(c *Config) { c.Grid.LaneWidth = 3 }},
		{"lane wider than block", func(c *Config) { c.Grid.BlockSize = 2; c.Grid.LaneWidth = 4 }},
		{"grid too small for road", func(c *Config) { c.Grid.Size = 5 }},
		{"zero max speed", func(c *Config) { c.Grid.MaxSpeed = 0 }},
		{"unknown rotary method", func(c *Config) { c.Grid.RotaryMethod = "signal" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validGridConfig()
			tc.mutate(&c)
			err := Validate(c)
			var ce *entity.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestValidateRoad(t *testing.T) {
	c := Config{
		Control: Control{Step: ControlStep{Total: 50}, Mode: ModeNaSch},
		Road:    Road{Length: 60, MaxSpeed: 5},
		Vehicle: Vehicle{Count: 15, ObeyRatio: 1, SlowdownP: 0.3},
	}
	assert.Nil(t, Validate(c))

	var ce *entity.ConfigError
	c.Vehicle.Count = 61
	assert.ErrorAs(t, Validate(c), &ce)
	c.Vehicle.Count = 15
	c.Road.MaxSpeed = 6
	assert.ErrorAs(t, Validate(c), &ce)
	c.Road.MaxSpeed = 0
	assert.ErrorAs(t, Validate(c), &ce)
	c.Road = Road{Length: 0, MaxSpeed: 5}
	assert.ErrorAs(t, Validate(c), &ce)
}

func TestParseRotaryMethod(t *testing.T) {
	m, err := ParseRotaryMethod("")
	assert.Nil(t, err)
	assert.Equal(t, entity.RotaryYield, m)
	m, err = ParseRotaryMethod("free")
	assert.Nil(t, err)
	assert.Equal(t, entity.RotaryFree, m)
	_, err = ParseRotaryMethod("2")
	assert.NotNil(t, err)
}
