package postgres

import (
	"fmt"
	"strings"

	"valuation-service/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argID      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{argID: 1}
}

// addCondition подставляет номер параметра в шаблон вида "%s = $%d"
func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argID))
	qb.args = append(qb.args, arg)
	qb.argID++
}

// addRaw - условие без параметров
func (qb *queryBuilder) addRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

const quoteSelect = `
	SELECT prezzo_min, prezzo_max,
	       COALESCE(zona_codice, ''), COALESCE(link_zona, ''), COALESCE(semestre, '')
	FROM omi_quotations`

// buildQuoteQuery строит запрос котировки: зона, если задана, иначе fascia.
// Пустые категория и состояние заменяются на "20" и NORMALE.
func buildQuoteQuery(key domain.QuoteKey) (string, []interface{}) {
	category := key.Category
	if category == "" {
		category = domain.CategoryResidential
	}
	state := key.State
	if state == "" {
		state = domain.MarketStateNormal
	}

	qb := newQueryBuilder()
	qb.addCondition("UPPER(%s) = UPPER($%d)", "comune_descrizione", key.Municipality)
	qb.addCondition("%s = $%d", "cod_tipologia", string(category))
	qb.addCondition("%s = $%d", "stato", string(state))
	qb.addRaw("prezzo_min IS NOT NULL")
	if key.ZoneCode != "" {
		qb.addCondition("%s = $%d", "zona_codice", key.ZoneCode)
	} else {
		band := key.PriceBand
		if band == "" {
			band = domain.PriceBandCentral
		}
		qb.addCondition("%s = $%d", "fascia", string(band))
	}

	query := fmt.Sprintf("%s %s ORDER BY fascia, zona_codice LIMIT 1", quoteSelect, qb.where())
	return query, qb.args
}

const zonesQuery = `
	SELECT DISTINCT zona_codice, COALESCE(link_zona, ''), COALESCE(fascia, '')
	FROM omi_quotations
	WHERE UPPER(comune_descrizione) = UPPER($1)
	  AND zona_codice IS NOT NULL
	ORDER BY 3, 1`
