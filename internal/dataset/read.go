package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "marketruns/internal/errors"
	"marketruns/pkg/contracts/domain"
)

// Readers for the derived CSVs the reporting binary consumes. Derived files
// are immutable inputs at this point; every reader validates the full column
// set before parsing a single row.

// ReadFirstSales reads first_sale_data.csv back into records.
func ReadFirstSales(path string) ([]domain.FirstSaleRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(path, header,
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColSegmentNum, domain.ColGroupID, domain.ColGlobalGroupID,
		domain.ColRoundNum, domain.ColFirstSalePeriod,
		"signal_at_first_sale", "n_sellers_first_period")
	if err != nil {
		return nil, err
	}

	records := make([]domain.FirstSaleRecord, 0, len(rows))
	for i, row := range rows {
		segmentNum, err := parseIntCell(row[idx[domain.ColSegmentNum]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: segment_num: %w", path, i+2, err)
		}
		groupID, err := parseIntCell(row[idx[domain.ColGroupID]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: group_id: %w", path, i+2, err)
		}
		round, err := parseIntCell(row[idx[domain.ColRoundNum]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: round_num: %w", path, i+2, err)
		}
		nSellers, err := parseIntCell(row[idx["n_sellers_first_period"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: n_sellers_first_period: %w", path, i+2, err)
		}
		firstSale, err := parseOptIntCell(row[idx[domain.ColFirstSalePeriod]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: first_sale_period: %w", path, i+2, err)
		}
		signal, err := parseOptFloatCell(row[idx["signal_at_first_sale"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: signal_at_first_sale: %w", path, i+2, err)
		}

		records = append(records, domain.FirstSaleRecord{
			SessionID:           row[idx[domain.ColSessionID]],
			Treatment:           row[idx[domain.ColTreatment]],
			Segment:             row[idx[domain.ColSegment]],
			SegmentNum:          segmentNum,
			GroupID:             groupID,
			GlobalGroupID:       row[idx[domain.ColGlobalGroupID]],
			Round:               round,
			FirstSalePeriod:     firstSale,
			SignalAtFirstSale:   signal,
			NSellersFirstPeriod: nSellers,
		})
	}
	return records, nil
}

// ReadPlayerPeriods reads individual_period_dataset.csv back into records.
func ReadPlayerPeriods(path string) ([]domain.PlayerPeriodRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(path, header,
		domain.ColSessionID, domain.ColTreatment, domain.ColSegment,
		domain.ColRound, domain.ColPeriod, domain.ColGroupID, domain.ColPlayer,
		domain.ColSignal, domain.ColState, domain.ColPrice,
		domain.ColSold, domain.ColAlreadySold, domain.ColPriorGroupSales,
		domain.ColSalePrevPeriod)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PlayerPeriodRecord, 0, len(rows))
	for i, row := range rows {
		intCell := func(col string) (int, error) {
			v, err := parseIntCell(row[idx[col]])
			if err != nil {
				return 0, fmt.Errorf("%s row %d: %s: %w", path, i+2, col, err)
			}
			return v, nil
		}

		var rec domain.PlayerPeriodRecord
		rec.SessionID = row[idx[domain.ColSessionID]]
		rec.Treatment = row[idx[domain.ColTreatment]]
		rec.Player = row[idx[domain.ColPlayer]]
		if rec.Segment, err = intCell(domain.ColSegment); err != nil {
			return nil, err
		}
		if rec.Round, err = intCell(domain.ColRound); err != nil {
			return nil, err
		}
		if rec.Period, err = intCell(domain.ColPeriod); err != nil {
			return nil, err
		}
		if rec.GroupID, err = intCell(domain.ColGroupID); err != nil {
			return nil, err
		}
		if rec.State, err = intCell(domain.ColState); err != nil {
			return nil, err
		}
		if rec.Sold, err = intCell(domain.ColSold); err != nil {
			return nil, err
		}
		if rec.AlreadySold, err = intCell(domain.ColAlreadySold); err != nil {
			return nil, err
		}
		if rec.PriorGroupSales, err = intCell(domain.ColPriorGroupSales); err != nil {
			return nil, err
		}
		if rec.SalePrevPeriod, err = intCell(domain.ColSalePrevPeriod); err != nil {
			return nil, err
		}
		if rec.Signal, err = parseOptFloatCell(row[idx[domain.ColSignal]]); err != nil {
			return nil, fmt.Errorf("%s row %d: signal: %w", path, i+2, err)
		}
		if rec.Price, err = parseOptFloatCell(row[idx[domain.ColPrice]]); err != nil {
			return nil, fmt.Errorf("%s row %d: price: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadTraits reads survey_traits.csv back into records.
func ReadTraits(path string) ([]domain.TraitRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	traitCols := []string{
		"extraversion", "agreeableness", "conscientiousness",
		"neuroticism", "openness", "impulsivity", "state_anxiety",
	}
	required := append([]string{domain.ColSessionID, domain.ColPlayer}, traitCols...)
	required = append(required, "age", "gender")
	idx, err := columnIndex(path, header, required...)
	if err != nil {
		return nil, err
	}

	records := make([]domain.TraitRecord, 0, len(rows))
	for i, row := range rows {
		floatCell := func(col string) (float64, error) {
			v, err := strconv.ParseFloat(row[idx[col]], 64)
			if err != nil {
				return 0, fmt.Errorf("%s row %d: %s: %w", path, i+2, col, err)
			}
			return v, nil
		}

		var rec domain.TraitRecord
		rec.SessionID = row[idx[domain.ColSessionID]]
		rec.Player = row[idx[domain.ColPlayer]]
		rec.Gender = row[idx["gender"]]
		if rec.Extraversion, err = floatCell("extraversion"); err != nil {
			return nil, err
		}
		if rec.Agreeableness, err = floatCell("agreeableness"); err != nil {
			return nil, err
		}
		if rec.Conscientiousness, err = floatCell("conscientiousness"); err != nil {
			return nil, err
		}
		if rec.Neuroticism, err = floatCell("neuroticism"); err != nil {
			return nil, err
		}
		if rec.Openness, err = floatCell("openness"); err != nil {
			return nil, err
		}
		if rec.Impulsivity, err = floatCell("impulsivity"); err != nil {
			return nil, err
		}
		if rec.StateAnxiety, err = floatCell("state_anxiety"); err != nil {
			return nil, err
		}
		if rec.Age, err = parseIntCell(row[idx["age"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: age: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("reading %s: file is empty", path)
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, all[1:], nil
}

func columnIndex(path string, header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(path, missing)
	}
	return idx, nil
}

func parseIntCell(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseOptIntCell(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptFloatCell(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
