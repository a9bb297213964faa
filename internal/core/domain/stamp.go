package domain

import "time"

// BuildStamp records the state of a target's output artifact after a
// verified successful build. It is compared against the artifact on
// later passes to decide whether the target is up to date.
type BuildStamp struct {
	TargetName string    `json:"target_name,omitzero"`
	ModTime    time.Time `json:"mod_time,omitzero"`
	OutputHash string    `json:"output_hash,omitzero"`
	Recorded   time.Time `json:"recorded,omitzero"`
}
