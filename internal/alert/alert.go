package alert

import (
	"encoding/json"
	"fmt"
)

// Level is the severity reported by the monitoring platform.
type Level string

const (
	LevelOk       Level = "Ok"
	LevelWarning  Level = "Warning"
	LevelCritical Level = "Critical"
)

// Known data.type discriminators. The platform may emit types outside this
// list; those decode into Generic.
const (
	TypeServerCpu                      = "ServerCpu"
	TypeServerMem                      = "ServerMem"
	TypeServerDisk                     = "ServerDisk"
	TypeStackImageUpdateAvailable      = "StackImageUpdateAvailable"
	TypeDeploymentImageUpdateAvailable = "DeploymentImageUpdateAvailable"
	TypeAwsBuilderTerminationFailed    = "AwsBuilderTerminationFailed"
	TypeNone                           = "None"
)

// Target identifies the monitored entity (server, stack, deployment, ...).
// IDs are unique within a target type.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Alert is a single webhook payload from the monitoring platform.
type Alert struct {
	Level    Level  `json:"level"`
	TS       int64  `json:"ts"`
	Resolved bool   `json:"resolved"`
	Target   Target `json:"target"`
	Data     Data   `json:"data"`
}

// Identity correlates an unresolved alert with a later resolved alert for the
// same entity and condition.
func (a *Alert) Identity() string {
	return a.Target.ID + "-" + a.Data.Type
}

// Friendly is a short human-readable handle used in log lines.
func (a *Alert) Friendly() string {
	return fmt.Sprintf("Alert for %s", a.Identity())
}

// Payload is the closed set of data.data shapes. Exactly one variant per
// known data.type, plus Generic as the catch-all.
type Payload interface {
	isPayload()
}

type ServerCpu struct {
	Percentage *float64 `json:"percentage"`
}

type ServerMem struct {
	UsedGB  *float64 `json:"used_gb"`
	TotalGB *float64 `json:"total_gb"`
}

type ServerDisk struct {
	Path    string   `json:"path"`
	UsedGB  *float64 `json:"used_gb"`
	TotalGB *float64 `json:"total_gb"`
}

type StackImageUpdateAvailable struct {
	Service string `json:"service"`
	Image   string `json:"image"`
}

type DeploymentImageUpdateAvailable struct {
	Image string `json:"image"`
}

type AwsBuilderTerminationFailed struct {
	InstanceID string `json:"instance_id"`
	Message    string `json:"message"`
}

type None struct{}

// ErrDetail is the nested error object some alert types carry.
type ErrDetail struct {
	Error string `json:"error"`
}

// Version is a semver triple carried by upgrade-style alerts.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// Generic holds the loosely-typed fields an unrecognized alert type may
// carry. All fields are optional.
type Generic struct {
	Err     *ErrDetail `json:"err"`
	From    *string    `json:"from"`
	To      *string    `json:"to"`
	Version *Version   `json:"version"`
}

func (ServerCpu) isPayload()                      {}
func (ServerMem) isPayload()                      {}
func (ServerDisk) isPayload()                     {}
func (StackImageUpdateAvailable) isPayload()      {}
func (DeploymentImageUpdateAvailable) isPayload() {}
func (AwsBuilderTerminationFailed) isPayload()    {}
func (None) isPayload()                           {}
func (Generic) isPayload()                        {}

// Data is the tagged union under alert.data. Type discriminates Payload;
// attrs keeps the raw object so generic fields like name/server_name stay
// observable regardless of variant. Unknown fields never cause an error.
type Data struct {
	Type    string
	Payload Payload

	attrs map[string]json.RawMessage
}

type dataEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var env dataEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	d.Type = env.Type

	if len(env.Data) > 0 {
		// Best effort: a non-object data.data is tolerated, just opaque.
		_ = json.Unmarshal(env.Data, &d.attrs)
	}

	var payload Payload
	var err error
	switch env.Type {
	case TypeServerCpu:
		payload, err = decodeInto[ServerCpu](env.Data)
	case TypeServerMem:
		payload, err = decodeInto[ServerMem](env.Data)
	case TypeServerDisk:
		payload, err = decodeInto[ServerDisk](env.Data)
	case TypeStackImageUpdateAvailable:
		payload, err = decodeInto[StackImageUpdateAvailable](env.Data)
	case TypeDeploymentImageUpdateAvailable:
		payload, err = decodeInto[DeploymentImageUpdateAvailable](env.Data)
	case TypeAwsBuilderTerminationFailed:
		payload, err = decodeInto[AwsBuilderTerminationFailed](env.Data)
	case TypeNone:
		payload = None{}
	default:
		payload, err = decodeInto[Generic](env.Data)
	}
	if err != nil {
		return fmt.Errorf("decoding %s payload: %w", env.Type, err)
	}
	d.Payload = payload
	return nil
}

func decodeInto[T Payload](raw json.RawMessage) (Payload, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// StringAttr reports a string-valued field of the raw data.data object,
// whatever the decoded variant. Used for the generic name/server_name
// subtitle fields.
func (d *Data) StringAttr(key string) (string, bool) {
	raw, ok := d.attrs[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
