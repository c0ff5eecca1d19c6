package syncing

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
	"github.com/vfg2006/ads-dashboard-api/pkg/utils"
)

const defaultInitialWindowDays = 30

// Planner calcula o conjunto mínimo de sub-intervalos que ainda precisam ser
// buscados, dado o modo de sincronização e a cobertura conhecida do cache
type Planner struct {
	initialWindowDays int
}

func NewPlanner(initialWindowDays int) *Planner {
	if initialWindowDays <= 0 {
		initialWindowDays = defaultInitialWindowDays
	}

	return &Planner{initialWindowDays: initialWindowDays}
}

// Plan retorna os chunks a buscar, do mais antigo para o mais recente.
//
//   - full: chunks alinhados ao mês-calendário do limite de retenção até hoje,
//     sem sobreposição
//   - incremental: apenas os sub-intervalos não evidenciados no cache, decididos
//     pela amostragem esparsa de cobertura (pode re-buscar, nunca deixa de buscar
//     um intervalo sem evidência)
//   - initial: uma janela curta recente para dar algo ao dashboard rapidamente,
//     adiando o backfill completo para uma ação explícita
//
// Um plano vazio deve fazer o orquestrador encerrar sem emitir chamadas
func (p *Planner) Plan(mode domain.SyncMode, requested domain.DateRange, covered map[string]bool) []domain.DateRange {
	if !requested.Valid() {
		return nil
	}

	var chunks []domain.DateRange

	switch mode {
	case domain.SyncModeFull:
		chunks = requested.MonthChunks()

	case domain.SyncModeIncremental:
		chunks = domain.MissingDateRanges(covered, requested)

	case domain.SyncModeInitial:
		today := utils.TruncateToDay(time.Now())
		chunks = []domain.DateRange{
			domain.NewDateRange(today.AddDate(0, 0, -p.initialWindowDays), today),
		}
	}

	logrus.WithFields(logrus.Fields{
		"mode":      string(mode),
		"requested": requested.String(),
		"chunks":    len(chunks),
	}).Debug("Plano de sincronização calculado")

	return chunks
}

// InitialWindowDays expõe a janela inicial configurada
func (p *Planner) InitialWindowDays() int {
	return p.initialWindowDays
}
