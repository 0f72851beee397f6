package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/gorm/clause"
)

// FiskerVINPrefix identifies Fisker Ocean VINs in the TLC export.
const FiskerVINPrefix = "VCF1"

// ImportCSV loads a TLC "For Hire Vehicles" CSV export into the vehicles
// table, upserting on plate so re-imports refresh existing rows. Rows
// without a DMV plate are skipped. Returns the number of rows imported.
func (r *Registry) ImportCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("registry: open %s: %w", path, err)
	}
	defer f.Close()
	return r.importFrom(f)
}

func (r *Registry) importFrom(src io.Reader) (int, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("registry: read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["DMV License Plate Number"]; !ok {
		return 0, fmt.Errorf("registry: csv missing DMV License Plate Number column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	importDate := time.Now()
	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("registry: read csv record: %w", err)
		}

		plate := strings.ToUpper(field(record, "DMV License Plate Number"))
		if plate == "" {
			continue
		}

		v := models.Vehicle{
			Plate:                plate,
			VIN:                  field(record, "Vehicle VIN Number"),
			VehicleYear:          field(record, "Vehicle Year"),
			OwnerName:            field(record, "Name"),
			LicenseType:          field(record, "License Type"),
			VehicleLicenseNumber: field(record, "Vehicle License Number"),
			PermitLicenseNumber:  field(record, "Permit License Number"),
			BaseNumber:           field(record, "Base Number"),
			BaseName:             field(record, "Base Name"),
			BaseType:             field(record, "Base Type"),
			WheelchairAccessible: field(record, "Wheelchair Accessible"),
			Active:               field(record, "Active"),
			ExpirationDate:       field(record, "Expiration Date"),
			ImportDate:           importDate,
		}

		result := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plate"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"vin", "vehicle_year", "owner_name", "license_type",
				"vehicle_license_number", "permit_license_number",
				"base_number", "base_name", "base_type",
				"wheelchair_accessible", "active", "expiration_date",
				"import_date",
			}),
		}).Create(&v)
		if result.Error != nil {
			return count, fmt.Errorf("registry: import plate %s: %w", plate, result.Error)
		}
		count++
	}
	return count, nil
}

// FilterByVINPrefix deletes registry rows whose VIN does not start with the
// given prefix, then returns the remaining row count. Used after import to
// keep only Fisker Oceans.
func (r *Registry) FilterByVINPrefix(prefix string) (int64, error) {
	err := r.db.Where("vin NOT LIKE ?", prefix+"%").
		Delete(&models.Vehicle{}).Error
	if err != nil {
		return 0, fmt.Errorf("registry: filter by vin prefix %s: %w", prefix, err)
	}
	var n int64
	if err := r.db.Model(&models.Vehicle{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("registry: count after filter: %w", err)
	}
	return n, nil
}
