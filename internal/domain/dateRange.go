package domain

import (
	"time"

	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

// DateRange representa um intervalo fechado de datas; invariante: Start <= End
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange cria um DateRange normalizado para o início do dia em UTC
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{
		Start: utils.TruncateToDay(start),
		End:   utils.TruncateToDay(end),
	}
}

// Valid retorna verdadeiro quando Start <= End
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Days retorna o número de dias cobertos pelo intervalo (inclusivo)
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains verifica se a data está dentro do intervalo
func (r DateRange) Contains(t time.Time) bool {
	day := utils.TruncateToDay(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// String formata o intervalo no padrão ISO usado nos logs
func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// MonthChunks divide o intervalo em sub-intervalos alinhados ao mês-calendário,
// do mais antigo para o mais recente, sem sobreposição
func (r DateRange) MonthChunks() []DateRange {
	if !r.Valid() {
		return nil
	}

	chunks := make([]DateRange, 0)
	cursor := r.Start

	for !cursor.After(r.End) {
		chunkEnd := utils.MonthEnd(cursor)
		if chunkEnd.After(r.End) {
			chunkEnd = r.End
		}

		chunks = append(chunks, DateRange{Start: cursor, End: chunkEnd})
		cursor = utils.MonthStart(cursor).AddDate(0, 1, 0)
	}

	return chunks
}

// MissingDateRanges calcula os sub-intervalos de requested que não estão evidenciados
// no conjunto de datas cobertas. A cobertura é verificada por amostragem esparsa
// (início, +7d, +15d e fim de cada mês): uma aproximação que pode re-buscar dados
// já presentes, mas nunca deixa de buscar um intervalo sem nenhuma evidência
func MissingDateRanges(covered map[string]bool, requested DateRange) []DateRange {
	if !requested.Valid() {
		return nil
	}

	missing := make([]DateRange, 0)
	for _, chunk := range requested.MonthChunks() {
		if !isRangeCovered(covered, chunk) {
			missing = append(missing, chunk)
		}
	}

	return missing
}

// isRangeCovered amostra datas do intervalo no conjunto de cobertura
func isRangeCovered(covered map[string]bool, rng DateRange) bool {
	if len(covered) == 0 {
		return false
	}

	samples := []time.Time{
		rng.Start,
		rng.Start.AddDate(0, 0, 7),
		rng.Start.AddDate(0, 0, 15),
		rng.End,
	}

	for _, sample := range samples {
		if sample.After(rng.End) {
			sample = rng.End
		}
		if !covered[sample.Format(time.DateOnly)] {
			return false
		}
	}

	return true
}
