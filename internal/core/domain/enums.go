package domain

import "strings"

// PriceBand - fascia OMI (B центр, C полуцентр, D периферия)
type PriceBand string

const (
	PriceBandCentral     PriceBand = "B"
	PriceBandSemiCentral PriceBand = "C"
	PriceBandSuburban    PriceBand = "D"
)

func (b PriceBand) Valid() bool {
	switch b {
	case PriceBandCentral, PriceBandSemiCentral, PriceBandSuburban:
		return true
	default:
		return false
	}
}

// PropertyCategory - код типологии OMI (cod_tipologia)
type PropertyCategory string

const (
	CategoryResidential PropertyCategory = "20" // abitazioni civili
)

// MarketState - состояние в справочнике OMI (stato)
type MarketState string

const (
	MarketStateExcellent MarketState = "OTTIMO"
	MarketStateNormal    MarketState = "NORMALE"
	MarketStatePoor      MarketState = "SCADENTE"
)

func (s MarketState) Valid() bool {
	switch s {
	case MarketStateExcellent, MarketStateNormal, MarketStatePoor:
		return true
	default:
		return false
	}
}

// PropertyCondition - stato di conservazione квартиры
type PropertyCondition string

const (
	ConditionToRenovate      PropertyCondition = "da_ristrutturare"
	ConditionGood            PropertyCondition = "buono"
	ConditionRenovated       PropertyCondition = "ristrutturato"
	ConditionFinelyRenovated PropertyCondition = "finemente_ristrutturato"
	ConditionNewBuild        PropertyCondition = "nuova_costruzione"
)

func (c PropertyCondition) Valid() bool {
	switch c {
	case ConditionToRenovate, ConditionGood, ConditionRenovated, ConditionFinelyRenovated, ConditionNewBuild:
		return true
	default:
		return false
	}
}

type Brightness string

const (
	BrightnessVeryBright Brightness = "molto_luminoso"
	BrightnessBright     Brightness = "luminoso"
	BrightnessMedium     Brightness = "mediamente_luminoso"
	BrightnessDim        Brightness = "poco_luminoso"
)

func (b Brightness) Valid() bool {
	switch b {
	case BrightnessVeryBright, BrightnessBright, BrightnessMedium, BrightnessDim:
		return true
	default:
		return false
	}
}

type ViewType string

const (
	ViewPanoramic     ViewType = "esterna_panoramica"
	ViewExternal      ViewType = "esterna"
	ViewMixed         ViewType = "mista"
	ViewInternal      ViewType = "interna"
	ViewFullyInternal ViewType = "completamente_interna"
)

func (v ViewType) Valid() bool {
	switch v {
	case ViewPanoramic, ViewExternal, ViewMixed, ViewInternal, ViewFullyInternal:
		return true
	default:
		return false
	}
}

// BuildingCondition - stato generale dell'edificio
type BuildingCondition string

const (
	BuildingExcellent BuildingCondition = "ottimo"
	BuildingNormal    BuildingCondition = "normale"
	BuildingPoor      BuildingCondition = "scadente"
)

func (c BuildingCondition) Valid() bool {
	switch c {
	case BuildingExcellent, BuildingNormal, BuildingPoor:
		return true
	default:
		return false
	}
}

type HeatingType string

const (
	HeatingIndependent    HeatingType = "autonomo"
	HeatingCentralMetered HeatingType = "centralizzato_contabilizzato"
	HeatingCentral        HeatingType = "centralizzato"
	HeatingNone           HeatingType = "assente"
)

func (h HeatingType) Valid() bool {
	switch h {
	case HeatingIndependent, HeatingCentralMetered, HeatingCentral, HeatingNone:
		return true
	default:
		return false
	}
}

// UsufructKind - vitalizio (пожизненный) или temporaneo (срочный)
type UsufructKind string

const (
	UsufructLifetime  UsufructKind = "vitalizio"
	UsufructFixedTerm UsufructKind = "temporaneo"
)

func (k UsufructKind) Valid() bool {
	return k == UsufructLifetime || k == UsufructFixedTerm
}

// NormalizeEnergyClass - верхний регистр без подчеркиваний ("a_4+" -> "A4+")
func NormalizeEnergyClass(class string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(class)), "_", "")
}
