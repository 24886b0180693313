package backdrop

import "time"

// Frame pacing.
const (
	TargetFPS = 30
)

// Lifecycle timing.
const (
	RotateInterval = 30 * time.Second
	FadeOutDelay   = 1000 * time.Millisecond
	FadeInDelay    = 50 * time.Millisecond
)

// Pointer.
const (
	PointerSmoothing = 0.05
	PointerWorldSpan = 5.0 // pointer units -> world units
	PointerYawGain   = 0.3
	PointerPitchGain = 0.2
	GridMinPitch     = -0.1
)

// Connections.
const (
	NeighborWindow = 14 // particles after i considered for a segment
	FloatsPerPoint = 3
	FloatsPerLine  = 2 * FloatsPerPoint
)

// Tunnel effect.
const (
	TunnelParticles      = 420
	TunnelMaxConnections = 260
	TunnelMaxDistance    = 2.2
	TunnelRadiusMin      = 2.0
	TunnelRadiusMax      = 10.0
	TunnelDepthNear      = -10.0
	TunnelDepthFar       = -60.0
	TunnelRespawnZ       = 5.0
	TunnelSpeedMin       = 0.08
	TunnelSpeedMax       = 0.32
	TunnelAngleEase      = 0.005
)

// Wave effect.
const (
	WaveParticles      = 640
	WaveMaxConnections = 900
	WaveMaxDistance    = 3.0
	WaveHalfWidth      = 5.0
	WavePushRadius     = 3.0
	WavePushStrength   = 1.2
	WaveYawAmplitude   = 0.25
	WavePitchAmplitude = 0.12
	WaveYawRate        = 0.1
	WavePitchRate      = 0.15
)

// Trail grid effect.
const (
	TrailParticles      = 15
	TrailMaxConnections = 300
	TrailLaneMin        = -5
	TrailLaneMax        = 5
	TrailLaneWidth      = 2.5
	TrailLaneEase       = 0.02
	TrailLaneChance     = 0.05
	TrailLaneDelayMin   = 2.0 // seconds
	TrailLaneDelayMax   = 6.0
	TrailRespawnZ       = 10.0
	TrailSpawnZ         = -60.0
	TrailFloorY         = -2.0
	TrailSpeedMin       = 0.25
	TrailSpeedMax       = 0.6
	TrailHistory        = 20
	TrailPitch          = -0.05
)
