package lvmmodel

import "github.com/forensicxlab/exhume-lvm/internal/lvmtext"

// The untyped element tree lives in lvmtext; these aliases let the typed
// projection code in this package refer to it without a second import.
type (
	Element  = lvmtext.Element
	Value    = lvmtext.Value
	Document = lvmtext.Document
)

const (
	KindInt   = lvmtext.KindInt
	KindStr   = lvmtext.KindStr
	KindArray = lvmtext.KindArray
)
