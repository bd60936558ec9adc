// Package governance sources the operational limits applied to call
// screening, currently the session-wide screening deadline. Values are
// hot-reloadable from configuration snapshots.
package governance
