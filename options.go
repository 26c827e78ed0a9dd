package nitf

import (
	"github.com/apex/log"
)

// Options tunes header parsing. A nil *Options is valid and means defaults.
type Options struct {
	// Logger receives debug traces and degradation warnings.
	// Defaults to log.Log.
	Logger log.Interface

	// Strict makes malformed optional fields fatal instead of replacing
	// them with their documented default.
	Strict bool

	// Version selects the image subheader layout when a subheader is parsed
	// without its file header. Defaults to V20.
	Version Version
}

func (o *Options) logger() log.Interface {
	if o == nil || o.Logger == nil {
		return log.Log
	}
	return o.Logger
}

func (o *Options) strict() bool {
	return o != nil && o.Strict
}

func (o *Options) version() Version {
	if o == nil || o.Version == VersionUnknown {
		return V20
	}
	return o.Version
}
