// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package params

import "fmt"

// Removed is a parameter that no longer exists. Values of removed parameters
// are stashed while decoding so the version adapter and the legacy decoder can
// rebuild the parameters that replaced them.
type Removed uint8

const (
	// Existed in the binary format; replaced by velocity curves.
	RemovedVelocityMapping1 Removed = iota
	RemovedVelocityMapping2
	RemovedVelocityMapping3
	RemovedMasterVelocity

	// Only ever existed in Mirage presets.
	RemovedLoopOn1
	RemovedLoopOn2
	RemovedLoopOn3
	RemovedLoopPingPong1
	RemovedLoopPingPong2
	RemovedLoopPingPong3

	RemovedReverbOnSwitch
	RemovedReverbUseFreeverbSwitch
	RemovedReverbDryDb
	RemovedReverbFreeverbWetPercent
	RemovedReverbSvWetDb
	RemovedReverbSizePercent
	RemovedReverbFreeverbDampingPercent
	RemovedReverbSvPreDelayMs
	RemovedReverbSvModFreqHz
	RemovedReverbSvModDepthPercent
	RemovedReverbSvFilterBidirectional

	RemovedDelayUseLegacyAlgorithmSwitch
	RemovedDelayOldTimeLMs
	RemovedDelayOldTimeRMs
	RemovedDelaySvTimeLMs
	RemovedDelaySvTimeRMs
	RemovedDelaySyncedTimeL
	RemovedDelaySyncedTimeR
	RemovedDelayFeedbackLegacy
	RemovedDelayModeLegacy
	RemovedDelayWetDb
	RemovedDelayFilterBidirectional

	RemovedPhaserDryDb
	RemovedPhaserWetDb
	RemovedPhaserModDepthPercent
	RemovedPhaserCenterHz

	RemovedConvolutionLegacyIrName

	NumRemoved
)

var removedNames = [NumRemoved]string{
	RemovedVelocityMapping1:              "Layer 1 Velocity Mapping",
	RemovedVelocityMapping2:              "Layer 2 Velocity Mapping",
	RemovedVelocityMapping3:              "Layer 3 Velocity Mapping",
	RemovedMasterVelocity:                "Master Velocity",
	RemovedLoopOn1:                       "Layer 1 Loop On",
	RemovedLoopOn2:                       "Layer 2 Loop On",
	RemovedLoopOn3:                       "Layer 3 Loop On",
	RemovedLoopPingPong1:                 "Layer 1 Loop Ping-pong",
	RemovedLoopPingPong2:                 "Layer 2 Loop Ping-pong",
	RemovedLoopPingPong3:                 "Layer 3 Loop Ping-pong",
	RemovedReverbOnSwitch:                "Reverb On",
	RemovedReverbUseFreeverbSwitch:       "Reverb Use Freeverb",
	RemovedReverbDryDb:                   "Reverb Dry dB",
	RemovedReverbFreeverbWetPercent:      "Reverb Freeverb Wet",
	RemovedReverbSvWetDb:                 "Reverb SV Wet dB",
	RemovedReverbSizePercent:             "Reverb Size",
	RemovedReverbFreeverbDampingPercent:  "Reverb Freeverb Damping",
	RemovedReverbSvPreDelayMs:            "Reverb SV Pre-delay",
	RemovedReverbSvModFreqHz:             "Reverb SV Mod Frequency",
	RemovedReverbSvModDepthPercent:       "Reverb SV Mod Depth",
	RemovedReverbSvFilterBidirectional:   "Reverb SV Filter",
	RemovedDelayUseLegacyAlgorithmSwitch: "Delay Legacy Algorithm",
	RemovedDelayOldTimeLMs:               "Delay Old Time L",
	RemovedDelayOldTimeRMs:               "Delay Old Time R",
	RemovedDelaySvTimeLMs:                "Delay SV Time L",
	RemovedDelaySvTimeRMs:                "Delay SV Time R",
	RemovedDelaySyncedTimeL:              "Delay Synced Time L",
	RemovedDelaySyncedTimeR:              "Delay Synced Time R",
	RemovedDelayFeedbackLegacy:           "Delay Feedback",
	RemovedDelayModeLegacy:               "Delay Mode",
	RemovedDelayWetDb:                    "Delay Wet dB",
	RemovedDelayFilterBidirectional:      "Delay Filter",
	RemovedPhaserDryDb:                   "Phaser Dry dB",
	RemovedPhaserWetDb:                   "Phaser Wet dB",
	RemovedPhaserModDepthPercent:         "Phaser Mod Depth",
	RemovedPhaserCenterHz:                "Phaser Center",
	RemovedConvolutionLegacyIrName:       "Convolution IR",
}

func (r Removed) String() string {
	if r < NumRemoved {
		return removedNames[r]
	}
	return fmt.Sprintf("Removed(%d)", uint8(r))
}

// RemovedVelocityMapping returns the removed velocity mapping mode of a layer.
func RemovedVelocityMapping(layer int) Removed {
	return RemovedVelocityMapping1 + Removed(layer)
}

// RemovedLoopOn returns the removed loop switch of a layer.
func RemovedLoopOn(layer int) Removed {
	return RemovedLoopOn1 + Removed(layer)
}

// RemovedLoopPingPong returns the removed ping-pong switch of a layer.
func RemovedLoopPingPong(layer int) Removed {
	return RemovedLoopPingPong1 + Removed(layer)
}

// Binary ids of removed parameters that the binary format carried.
const masterVelocityID = 900

var removedByID = map[uint32]Removed{
	masterVelocityID:                         RemovedMasterVelocity,
	uint32(layerIDBase*1) + masterVelocityID: RemovedVelocityMapping1,
	uint32(layerIDBase*2) + masterVelocityID: RemovedVelocityMapping2,
	uint32(layerIDBase*3) + masterVelocityID: RemovedVelocityMapping3,
}

// RemovedByID looks up a removed parameter by the id it had in the binary
// format.
func RemovedByID(id uint32) (Removed, bool) {
	r, ok := removedByID[id]
	return r, ok
}

// RemovedID returns the binary id of a removed parameter. ok is false for
// parameters that only existed in Mirage presets.
func RemovedID(r Removed) (id uint32, ok bool) {
	for id, v := range removedByID {
		if v == r {
			return id, true
		}
	}
	return 0, false
}
