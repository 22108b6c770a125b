package exporter

import (
	"fmt"

	"marketruns/internal/config"
	"marketruns/internal/dataset"
	"marketruns/pkg/contracts/domain"
)

// Derived dataset filenames. Downstream analysis scripts reference these
// names, so they are part of the output contract.
const (
	FilePlayerPeriods         = "individual_period_dataset.csv"
	FilePlayerRounds          = "individual_round_panel.csv"
	FileFirstSellerRounds     = "first_seller_round_data.csv"
	FileFirstSales            = "first_sale_data.csv"
	FileGroupRoundTiming      = "group_round_timing.csv"
	FileSurveyTraits          = "survey_traits.csv"
	FileEmotions              = "imotions_period_emotions.csv"
	FileEmotionsExtended      = "imotions_period_emotions_extended.csv"
	FileEmotionsTraitsSelling = "emotions_traits_selling_dataset.csv"
	FileFirstSellerAnalysis   = "first_seller_analysis_data.csv"
	FileOrdinalPositions      = "ordinal_selling_position.csv"
	FileChatActivity          = "chat_activity_dataset.csv"
)

// DatasetExporter writes the derived datasets as CSV files.
type DatasetExporter struct {
	csv *CSVWriter
}

// NewDatasetExporter creates a dataset exporter rooted at the configured
// derived directory.
func NewDatasetExporter(paths *config.Paths) *DatasetExporter {
	return &DatasetExporter{csv: NewCSVWriter(paths)}
}

// WritePlayerPeriods writes the player-period panel.
func (e *DatasetExporter) WritePlayerPeriods(records []domain.PlayerPeriodRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColRound, domain.ColPeriod, domain.ColGroupID, domain.ColPlayer,
		domain.ColSignal, domain.ColState, domain.ColPrice,
		domain.ColSold, domain.ColAlreadySold, domain.ColPriorGroupSales,
		domain.ColSalePrevPeriod,
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SessionID, r.Treatment, formatInt(r.Segment),
			formatInt(r.Round), formatInt(r.Period), formatInt(r.GroupID), r.Player,
			formatOptFloat(r.Signal), formatInt(r.State), formatOptFloat(r.Price),
			formatInt(r.Sold), formatInt(r.AlreadySold), formatInt(r.PriorGroupSales),
			formatInt(r.SalePrevPeriod),
		})
	}
	return e.csv.WriteSimpleCSV(FilePlayerPeriods, headers, rows)
}

// WritePlayerRounds writes the player-round panel.
func (e *DatasetExporter) WritePlayerRounds(records []domain.PlayerRoundRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColGroupID, domain.ColRound, domain.ColPlayer,
		domain.ColSignal, domain.ColState, domain.ColSellPeriod,
		domain.ColDidSell, domain.ColSellPrice,
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SessionID, r.Treatment, formatInt(r.Segment),
			formatInt(r.GroupID), formatInt(r.Round), r.Player,
			formatOptFloat(r.Signal), formatInt(r.State), formatOptInt(r.SellPeriod),
			formatInt(r.DidSell), formatOptFloat(r.SellPrice),
		})
	}
	return e.csv.WriteSimpleCSV(FilePlayerRounds, headers, rows)
}

// WriteFirstSellerRounds writes the player-round first-seller dataset.
func (e *DatasetExporter) WriteFirstSellerRounds(records []domain.FirstSellerRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColGroupID, domain.ColRound, domain.ColPlayer,
		domain.ColPublicSignal, domain.ColState,
		domain.ColIsFirstSeller, domain.ColIsSecondSeller, domain.ColFirstSalePeriod,
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SessionID, r.Treatment, formatInt(r.Segment),
			formatInt(r.GroupID), formatInt(r.Round), r.Player,
			formatOptFloat(r.PublicSignal), formatInt(r.State),
			formatInt(r.IsFirstSeller), formatInt(r.IsSecondSeller),
			formatOptInt(r.FirstSalePeriod),
		})
	}
	return e.csv.WriteSimpleCSV(FileFirstSellerRounds, headers, rows)
}

// WriteFirstSales writes the group-round first-sale dataset.
func (e *DatasetExporter) WriteFirstSales(records []domain.FirstSaleRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColSegmentNum, domain.ColGroupID, domain.ColGlobalGroupID,
		domain.ColRoundNum, domain.ColFirstSalePeriod,
		"signal_at_first_sale", "n_sellers_first_period",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SessionID, r.Treatment, r.Segment,
			formatInt(r.SegmentNum), formatInt(r.GroupID), r.GlobalGroupID,
			formatInt(r.Round), formatOptInt(r.FirstSalePeriod),
			formatOptFloat(r.SignalAtFirstSale), formatInt(r.NSellersFirstPeriod),
		})
	}
	return e.csv.WriteSimpleCSV(FileFirstSales, headers, rows)
}

// WriteGroupRoundTiming writes the group-round timing dataset with up to
// four ordered seller slots per row.
func (e *DatasetExporter) WriteGroupRoundTiming(records []domain.GroupRoundTimingRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColSegmentNum, domain.ColGroupID, domain.ColGlobalGroupID,
		domain.ColRoundNum, domain.ColState, "n_sellers",
	}
	for i := 1; i <= domain.PlayersPerGroup; i++ {
		headers = append(headers,
			fmt.Sprintf("seller_%d_period", i),
			fmt.Sprintf("seller_%d_label", i),
			fmt.Sprintf("seller_%d_signal", i))
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.SessionID, r.Treatment, r.Segment,
			formatInt(r.SegmentNum), formatInt(r.GroupID), r.GlobalGroupID,
			formatInt(r.Round), formatInt(r.State), formatInt(len(r.Sellers)),
		}
		for i := 0; i < domain.PlayersPerGroup; i++ {
			if i < len(r.Sellers) {
				s := r.Sellers[i]
				row = append(row, formatInt(s.Period), s.Label, formatOptFloat(s.Signal))
			} else {
				row = append(row, "", "", "")
			}
		}
		rows = append(rows, row)
	}
	return e.csv.WriteSimpleCSV(FileGroupRoundTiming, headers, rows)
}

// WriteTraits writes the per-participant survey traits dataset.
func (e *DatasetExporter) WriteTraits(records []domain.TraitRecord) error {
	headers := append([]string{domain.ColSessionID, domain.ColPlayer},
		traitHeaders()...)
	headers = append(headers, "age", "gender")

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := append([]string{r.SessionID, r.Player}, traitCells(&r)...)
		row = append(row, formatInt(r.Age), r.Gender)
		rows = append(rows, row)
	}
	return e.csv.WriteSimpleCSV(FileSurveyTraits, headers, rows)
}

// WriteEmotions writes the per-player-period emotion means.
func (e *DatasetExporter) WriteEmotions(records []domain.EmotionRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColSegment, domain.ColRound,
		domain.ColPeriod, domain.ColPlayer,
	}
	for _, channel := range domain.EmotionChannels {
		headers = append(headers, channel+"_mean")
	}
	headers = append(headers, domain.ColNFrames)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.SessionID, formatInt(r.Segment), formatInt(r.Round),
			formatInt(r.Period), r.Player,
		}
		for _, channel := range domain.EmotionChannels {
			if stats, ok := r.Channels[channel]; ok {
				row = append(row, formatFloat(stats.Mean))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, formatInt(r.NFrames))
		rows = append(rows, row)
	}
	return e.csv.WriteSimpleCSV(FileEmotions, headers, rows)
}

// WriteEmotionsExtended writes the per-player-period emotion aggregates with
// mean, max and p95 per channel.
func (e *DatasetExporter) WriteEmotionsExtended(records []domain.EmotionRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColSegment, domain.ColRound,
		domain.ColPeriod, domain.ColPlayer,
	}
	for _, channel := range domain.EmotionChannels {
		headers = append(headers, channel+"_mean", channel+"_max", channel+"_p95")
	}
	headers = append(headers, domain.ColNFrames)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.SessionID, formatInt(r.Segment), formatInt(r.Round),
			formatInt(r.Period), r.Player,
		}
		for _, channel := range domain.EmotionChannels {
			if stats, ok := r.Channels[channel]; ok {
				row = append(row,
					formatFloat(stats.Mean), formatFloat(stats.Max), formatFloat(stats.P95))
			} else {
				row = append(row, "", "", "")
			}
		}
		row = append(row, formatInt(r.NFrames))
		rows = append(rows, row)
	}
	return e.csv.WriteSimpleCSV(FileEmotionsExtended, headers, rows)
}

// WriteEmotionsTraitsSelling writes the merged emotions/traits/selling
// dataset.
func (e *DatasetExporter) WriteEmotionsTraitsSelling(rows []dataset.EmotionTraitRow) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColRound, domain.ColPeriod, domain.ColGroupID,
		domain.ColGlobalGroupID, domain.ColPlayer,
		domain.ColSignal, domain.ColState, domain.ColPrice,
		domain.ColSold, domain.ColAlreadySold, domain.ColPriorGroupSales,
		domain.ColSalePrevPeriod,
	}
	headers = append(headers, traitHeaders()...)
	headers = append(headers, "age", "gender")
	for _, channel := range domain.EmotionChannels {
		headers = append(headers, channel+"_mean")
	}
	headers = append(headers, domain.ColNFrames)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{
			row.SessionID, row.Treatment, formatInt(row.Segment),
			formatInt(row.Round), formatInt(row.Period), formatInt(row.GroupID),
			row.GlobalGroupID, row.Player,
			formatOptFloat(row.Signal), formatInt(row.State), formatOptFloat(row.Price),
			formatInt(row.Sold), formatInt(row.AlreadySold), formatInt(row.PriorGroupSales),
			formatInt(row.SalePrevPeriod),
		}
		if row.Traits != nil {
			cells = append(cells, traitCells(row.Traits)...)
			cells = append(cells, formatInt(row.Traits.Age), row.Traits.Gender)
		} else {
			cells = append(cells, emptyCells(9)...)
		}
		if row.Emotions != nil {
			for _, channel := range domain.EmotionChannels {
				if stats, ok := row.Emotions.Channels[channel]; ok {
					cells = append(cells, formatFloat(stats.Mean))
				} else {
					cells = append(cells, "")
				}
			}
			cells = append(cells, formatInt(row.Emotions.NFrames))
		} else {
			cells = append(cells, emptyCells(len(domain.EmotionChannels)+1)...)
		}
		out = append(out, cells)
	}
	return e.csv.WriteSimpleCSV(FileEmotionsTraitsSelling, headers, out)
}

// WriteFirstSellerAnalysis writes the first-seller regression dataset.
func (e *DatasetExporter) WriteFirstSellerAnalysis(rows []dataset.FirstSellerAnalysisRow) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColGroupID, domain.ColRound, domain.ColPlayer,
		domain.ColPublicSignal, domain.ColState,
		domain.ColIsFirstSeller, domain.ColIsSecondSeller, domain.ColFirstSalePeriod,
	}
	headers = append(headers, traitHeaders()...)
	headers = append(headers, "age", domain.ColGenderFemale)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{
			row.SessionID, row.Treatment, formatInt(row.Segment),
			formatInt(row.GroupID), formatInt(row.Round), row.Player,
			formatOptFloat(row.PublicSignal), formatInt(row.State),
			formatInt(row.IsFirstSeller), formatInt(row.IsSecondSeller),
			formatOptInt(row.FirstSalePeriod),
		}
		if row.Traits != nil {
			cells = append(cells, traitCells(row.Traits)...)
			cells = append(cells, formatInt(row.Traits.Age), formatInt(row.GenderFemale))
		} else {
			cells = append(cells, emptyCells(7)...)
			cells = append(cells, "", formatInt(row.GenderFemale))
		}
		out = append(out, cells)
	}
	return e.csv.WriteSimpleCSV(FileFirstSellerAnalysis, headers, out)
}

// WriteOrdinalPositions writes the ordinal selling-position dataset.
func (e *DatasetExporter) WriteOrdinalPositions(rows []dataset.OrdinalRow) error {
	headers := []string{
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColGroupID, domain.ColRound, domain.ColPlayer, domain.ColPlayerID,
		domain.ColSellPeriod, domain.ColDidSell, domain.ColSellRank,
		"emotion_period",
	}
	for _, channel := range domain.EmotionChannels {
		headers = append(headers, channel+"_p95")
	}
	headers = append(headers, traitHeaders()...)
	headers = append(headers, "age", domain.ColGenderFemale)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{
			row.SessionID, row.Treatment, formatInt(row.Segment),
			formatInt(row.GroupID), formatInt(row.Round), row.Player, row.PlayerID,
			formatOptInt(row.SellPeriod), formatInt(row.DidSell), formatInt(row.SellRank),
			formatInt(row.EmotionPeriod),
		}
		for _, channel := range domain.EmotionChannels {
			if v, ok := row.P95[channel]; ok {
				cells = append(cells, formatFloat(v))
			} else {
				cells = append(cells, "")
			}
		}
		if row.Traits != nil {
			cells = append(cells, traitCells(row.Traits)...)
			cells = append(cells, formatInt(row.Traits.Age), formatInt(row.GenderFemale))
		} else {
			cells = append(cells, emptyCells(7)...)
			cells = append(cells, "", formatInt(row.GenderFemale))
		}
		out = append(out, cells)
	}
	return e.csv.WriteSimpleCSV(FileOrdinalPositions, headers, out)
}

// WriteChatActivity writes the player-period chat activity dataset.
func (e *DatasetExporter) WriteChatActivity(records []domain.ChatActivityRecord) error {
	headers := []string{
		domain.ColSessionID, domain.ColSegment, domain.ColRound,
		domain.ColPeriod, domain.ColPlayer, domain.ColGroupID,
		"messages_sent_segment", "messages_received_segment", "total_group_messages",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SessionID, formatInt(r.Segment), formatInt(r.Round),
			formatInt(r.Period), r.Player, formatInt(r.GroupID),
			formatInt(r.MessagesSentSegment), formatInt(r.MessagesReceivedSegment),
			formatInt(r.TotalGroupMessages),
		})
	}
	return e.csv.WriteSimpleCSV(FileChatActivity, headers, rows)
}

func traitHeaders() []string {
	return []string{
		"extraversion", "agreeableness", "conscientiousness",
		"neuroticism", "openness", "impulsivity", "state_anxiety",
	}
}

func traitCells(t *domain.TraitRecord) []string {
	return []string{
		formatFloat(t.Extraversion), formatFloat(t.Agreeableness),
		formatFloat(t.Conscientiousness), formatFloat(t.Neuroticism),
		formatFloat(t.Openness), formatFloat(t.Impulsivity),
		formatFloat(t.StateAnxiety),
	}
}

func emptyCells(n int) []string {
	return make([]string, n)
}
