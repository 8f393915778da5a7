package models

// Module is an area of the product that permissions are granted on.
type Module string

const (
	ModuleDashboard Module = "Dashboard"
	ModuleReports   Module = "Reports"
	ModuleSettings  Module = "Settings"
)

// Modules lists every module in evaluation order.
var Modules = []Module{ModuleDashboard, ModuleReports, ModuleSettings}

// Flag is a single capability within a module.
type Flag string

const (
	FlagRead   Flag = "Read"
	FlagWrite  Flag = "Write"
	FlagDelete Flag = "Delete"
	FlagShare  Flag = "Share"
)

// Flags lists every flag in column order.
var Flags = []Flag{FlagRead, FlagWrite, FlagDelete, FlagShare}

// FlagSet holds the four independent capability flags of one module.
type FlagSet struct {
	Read   bool `json:"Read"`
	Write  bool `json:"Write"`
	Delete bool `json:"Delete"`
	Share  bool `json:"Share"`
}

// Get returns the value of a flag. Unknown flags read as false.
func (f FlagSet) Get(flag Flag) bool {
	switch flag {
	case FlagRead:
		return f.Read
	case FlagWrite:
		return f.Write
	case FlagDelete:
		return f.Delete
	case FlagShare:
		return f.Share
	}
	return false
}

// With returns a copy of f with one flag set to value.
func (f FlagSet) With(flag Flag, value bool) FlagSet {
	switch flag {
	case FlagRead:
		f.Read = value
	case FlagWrite:
		f.Write = value
	case FlagDelete:
		f.Delete = value
	case FlagShare:
		f.Share = value
	}
	return f
}

// PermissionMatrix maps every module to its flag set. It is a value type:
// assignment copies it, and two matrices compare equal with ==.
type PermissionMatrix struct {
	Dashboard FlagSet `json:"Dashboard"`
	Reports   FlagSet `json:"Reports"`
	Settings  FlagSet `json:"Settings"`
}

// Get returns the flag set of a module.
func (m PermissionMatrix) Get(module Module) FlagSet {
	switch module {
	case ModuleDashboard:
		return m.Dashboard
	case ModuleReports:
		return m.Reports
	case ModuleSettings:
		return m.Settings
	}
	return FlagSet{}
}

// With returns a copy of m with the flag set of one module replaced.
func (m PermissionMatrix) With(module Module, flags FlagSet) PermissionMatrix {
	switch module {
	case ModuleDashboard:
		m.Dashboard = flags
	case ModuleReports:
		m.Reports = flags
	case ModuleSettings:
		m.Settings = flags
	}
	return m
}

// UniformMatrix returns a matrix where every module carries the same flags.
func UniformMatrix(flags FlagSet) PermissionMatrix {
	return PermissionMatrix{Dashboard: flags, Reports: flags, Settings: flags}
}
