package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	rc := NewRuntimeConfig(Config{})

	assert.Equal(t, LockStrategyFIFO, rc.C.LockStrategy)
	assert.Equal(t, defaultBatchCapacity, rc.C.BatchCapacity)
	assert.Equal(t, defaultAutoReleaseRatio, rc.C.AutoReleaseRatio)
	assert.Equal(t, defaultOccupancyCapacity, rc.C.OccupancyCapacity)
	assert.Equal(t, defaultCapacityMargin, rc.C.CapacityMargin)
	assert.Equal(t, defaultMaxCheckpoints, rc.C.MaxCheckpoints)
	assert.Equal(t, defaultMaxSpeed, rc.C.MaxSpeed)
}

func TestRuntimeConfigOverrides(t *testing.T) {
	rc := NewRuntimeConfig(Config{Control: Control{
		LockStrategy:  LockStrategyBatch,
		BatchCapacity: 8,
		MaxSpeed:      1.5,
	}})

	assert.Equal(t, LockStrategyBatch, rc.C.LockStrategy)
	assert.Equal(t, 8, rc.C.BatchCapacity)
	assert.Equal(t, 1.5, rc.C.MaxSpeed)
	// 未覆盖的字段仍取默认值
	assert.Equal(t, defaultOccupancyCapacity, rc.C.OccupancyCapacity)
}

func TestVehicleCapacityMargin(t *testing.T) {
	rc := NewRuntimeConfig(Config{})

	// 余量至少为1
	assert.Equal(t, 1, rc.VehicleCapacity(0))
	assert.Equal(t, 6, rc.VehicleCapacity(5))
	assert.Equal(t, 110, rc.VehicleCapacity(100))
}
