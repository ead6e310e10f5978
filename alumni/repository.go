// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/alumap/spatial"
	"github.com/jcodagnone/alumap/utils/textutils"
)

// Repository handles persistence of alumni profiles.
type Repository interface {
	// CreateSchema creates the alumni table
	CreateSchema() error

	// Save inserts a new profile, or replaces an existing one with the same ID.
	// New profiles without an ID get the next free one.
	Save(r *Record) error

	// BulkInsert inserts a slice of profiles in a single transaction
	BulkInsert(records []*Record) error

	// Get returns the full, unmasked profile. ErrNotFound if it doesn't exist.
	Get(id int64) (*Record, error)

	// FetchCandidates returns the listable profiles matching the structured
	// predicates, ordered by ID.
	FetchCandidates(p Predicates) ([]*Record, error)

	// All returns every profile, sorted by ID
	All() ([]*Record, error)

	// Count returns the total number of profiles
	Count() (int, error)

	// UpdatePrivacy changes the privacy tier of a profile
	UpdatePrivacy(id int64, tier PrivacyTier) error

	// Update applies a partial update and returns the resulting profile
	Update(id int64, u *ProfileUpdate) (*Record, error)
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a new profile repository.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS alumni (
			id BIGINT PRIMARY KEY,
			alumni_identity_id VARCHAR,
			name VARCHAR NOT NULL,
			graduation_year INTEGER,
			school VARCHAR,
			college VARCHAR,
			major VARCHAR,
			degree VARCHAR,
			company VARCHAR,
			job_title VARCHAR,
			industry VARCHAR,
			industry_segment VARCHAR,
			is_startup BOOLEAN NOT NULL DEFAULT FALSE,
			funding_stage VARCHAR,
			business_domain VARCHAR,
			country VARCHAR,
			city VARCHAR,
			district VARCHAR,
			address VARCHAR,
			address_en VARCHAR,
			lat DOUBLE,
			lng DOUBLE,
			office_address VARCHAR,
			office_lat DOUBLE,
			office_lng DOUBLE,
			privacy_level VARCHAR NOT NULL DEFAULT 'district',
			contact_name VARCHAR,
			contact_phone VARCHAR,
			contact_email VARCHAR,
			wechat VARCHAR,
			qq VARCHAR,
			skills VARCHAR[],
			resources VARCHAR[],
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

const columns = `
	id, alumni_identity_id, name, graduation_year,
	school, college, major, degree,
	company, job_title, industry, industry_segment, is_startup, funding_stage, business_domain,
	country, city, district, address, address_en, lat, lng,
	office_address, office_lat, office_lng,
	privacy_level,
	contact_name, contact_phone, contact_email, wechat, qq,
	skills, resources,
	updated_at`

var baseSelect = `SELECT ` + columns + ` FROM alumni`

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func nullLat(p *spatial.Point) any {
	if p == nil {
		return nil
	}

	return p.Lat
}

func nullLng(p *spatial.Point) any {
	if p == nil {
		return nil
	}

	return p.Lng
}

func nullYear(y *int) any {
	if y == nil {
		return nil
	}

	return *y
}

// args returns the values for columns, in order.
func args(rec *Record) []any {
	return []any{
		rec.ID, nullIfEmpty(rec.AlumniIdentityID), rec.Name, nullYear(rec.GraduationYear),
		nullIfEmpty(rec.School), nullIfEmpty(rec.College), nullIfEmpty(rec.Major), nullIfEmpty(rec.Degree),
		nullIfEmpty(rec.Company), nullIfEmpty(rec.JobTitle), nullIfEmpty(rec.Industry),
		nullIfEmpty(rec.IndustrySegment), rec.IsStartup, nullIfEmpty(rec.FundingStage),
		nullIfEmpty(rec.BusinessDomain),
		nullIfEmpty(rec.Country), nullIfEmpty(rec.City), nullIfEmpty(rec.District),
		nullIfEmpty(rec.Address), nullIfEmpty(rec.AddressEN), nullLat(rec.Point), nullLng(rec.Point),
		nullIfEmpty(rec.OfficeAddress), nullLat(rec.OfficePoint), nullLng(rec.OfficePoint),
		string(rec.PrivacyLevel),
		nullIfEmpty(rec.ContactName), nullIfEmpty(rec.ContactPhone), nullIfEmpty(rec.ContactEmail),
		nullIfEmpty(rec.WeChat), nullIfEmpty(rec.QQ),
		rec.Skills, rec.Resources,
		rec.UpdatedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	rec := &Record{}

	var identityID, school, college, major, degree sql.NullString
	var company, jobTitle, industry, segment, fundingStage, businessDomain sql.NullString
	var country, city, district, address, addressEN, officeAddress sql.NullString
	var contactName, contactPhone, contactEmail, wechat, qq sql.NullString
	var privacyLevel string
	var graduationYear sql.NullInt64
	var lat, lng, officeLat, officeLng sql.NullFloat64
	var skills, resources any
	var updatedAt sql.NullTime

	if err := s.Scan(
		&rec.ID, &identityID, &rec.Name, &graduationYear,
		&school, &college, &major, &degree,
		&company, &jobTitle, &industry, &segment, &rec.IsStartup, &fundingStage, &businessDomain,
		&country, &city, &district, &address, &addressEN, &lat, &lng,
		&officeAddress, &officeLat, &officeLng,
		&privacyLevel,
		&contactName, &contactPhone, &contactEmail, &wechat, &qq,
		&skills, &resources,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	rec.AlumniIdentityID = identityID.String
	rec.School = school.String
	rec.College = college.String
	rec.Major = major.String
	rec.Degree = degree.String
	rec.Company = company.String
	rec.JobTitle = jobTitle.String
	rec.Industry = industry.String
	rec.IndustrySegment = segment.String
	rec.FundingStage = fundingStage.String
	rec.BusinessDomain = businessDomain.String
	rec.Country = country.String
	rec.City = city.String
	rec.District = district.String
	rec.Address = address.String
	rec.AddressEN = addressEN.String
	rec.OfficeAddress = officeAddress.String
	rec.ContactName = contactName.String
	rec.ContactPhone = contactPhone.String
	rec.ContactEmail = contactEmail.String
	rec.WeChat = wechat.String
	rec.QQ = qq.String
	rec.PrivacyLevel = PrivacyTier(privacyLevel)

	if graduationYear.Valid {
		year := int(graduationYear.Int64)
		rec.GraduationYear = &year
	}

	if lat.Valid && lng.Valid {
		rec.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
	}

	if officeLat.Valid && officeLng.Valid {
		rec.OfficePoint = &spatial.Point{Lat: officeLat.Float64, Lng: officeLng.Float64}
	}

	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}

	var ok bool
	if rec.Skills, ok = textutils.AnyToStringSlice(skills); !ok {
		return nil, fmt.Errorf("failed to convert skills to []string for profile %d", rec.ID)
	}

	if rec.Resources, ok = textutils.AnyToStringSlice(resources); !ok {
		return nil, fmt.Errorf("failed to convert resources to []string for profile %d", rec.ID)
	}

	if len(rec.Skills) == 0 {
		rec.Skills = nil
	}

	if len(rec.Resources) == 0 {
		rec.Resources = nil
	}

	return rec, nil
}

func (r *sqlRepository) list(query string, queryArgs []any) ([]*Record, error) {
	rows, err := r.db.Query(query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *sqlRepository) Get(id int64) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(baseSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("getting profile %d: %w", id, err)
	}

	return rec, nil
}

func (r *sqlRepository) FetchCandidates(p Predicates) ([]*Record, error) {
	where := []string{"privacy_level NOT IN ('hidden', 'friends')"}
	queryArgs := []any{}

	for _, sp := range p.strings() {
		if sp.want == "" {
			continue
		}

		where = append(where, sp.column+" = ?")
		queryArgs = append(queryArgs, sp.want)
	}

	if p.GraduationYear != nil {
		where = append(where, "graduation_year = ?")
		queryArgs = append(queryArgs, *p.GraduationYear)
	}

	if p.IsStartup != nil {
		where = append(where, "is_startup = ?")
		queryArgs = append(queryArgs, *p.IsStartup)
	}

	query := baseSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY id" // #nosec G202 - columns come from a fixed list

	records, err := r.list(query, queryArgs)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	return records, nil
}

func (r *sqlRepository) All() ([]*Record, error) {
	return r.list(baseSelect+` ORDER BY id`, []any{})
}

func (r *sqlRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM alumni",
	).Scan(&count)

	return count, err
}

func (r *sqlRepository) exists(id int64) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM alumni WHERE id = ?", id).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

func prepare(rec *Record) error {
	sanitizeRecord(rec)

	if err := validateRecord(rec); err != nil {
		return err
	}

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	return nil
}

func (r *sqlRepository) Save(rec *Record) error {
	if rec == nil {
		return &ValidationError{Field: "record", Message: "must not be nil"}
	}

	rec.UpdatedAt = time.Time{}
	if err := prepare(rec); err != nil {
		return err
	}

	if rec.ID != 0 {
		found, err := r.exists(rec.ID)
		if err != nil {
			return fmt.Errorf("checking profile %d: %w", rec.ID, err)
		}

		if found {
			// The id goes last, after every column but id itself.
			updateArgs := append(args(rec)[1:], rec.ID)

			_, err = r.db.Exec(`
				UPDATE alumni SET
					alumni_identity_id = ?, name = ?, graduation_year = ?,
					school = ?, college = ?, major = ?, degree = ?,
					company = ?, job_title = ?, industry = ?, industry_segment = ?, is_startup = ?,
					funding_stage = ?, business_domain = ?,
					country = ?, city = ?, district = ?, address = ?, address_en = ?, lat = ?, lng = ?,
					office_address = ?, office_lat = ?, office_lng = ?,
					privacy_level = ?,
					contact_name = ?, contact_phone = ?, contact_email = ?, wechat = ?, qq = ?,
					skills = ?, resources = ?,
					updated_at = ?
				WHERE id = ?
			`, updateArgs...)
			if err != nil {
				return fmt.Errorf("updating profile %d: %w", rec.ID, err)
			}

			return nil
		}
	}

	return r.BulkInsert([]*Record{rec})
}

func (r *sqlRepository) BulkInsert(records []*Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback transaction inserting %d profiles: %v", len(records), err)
		}
	}()

	var maxID int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(id), 0) FROM alumni").Scan(&maxID); err != nil {
		return fmt.Errorf("reading max id: %w", err)
	}

	for _, rec := range records {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO alumni (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if err := prepare(rec); err != nil {
			return fmt.Errorf("profile %q: %w", rec.Name, err)
		}

		if rec.ID == 0 {
			maxID++
			rec.ID = maxID
		}

		if _, err := stmt.Exec(args(rec)...); err != nil {
			return fmt.Errorf("inserting profile %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (r *sqlRepository) UpdatePrivacy(id int64, tier PrivacyTier) error {
	if _, err := ParsePrivacyTier(string(tier)); err != nil {
		return err
	}

	found, err := r.exists(id)
	if err != nil {
		return fmt.Errorf("checking profile %d: %w", id, err)
	}

	if !found {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}

	_, err = r.db.Exec(
		`UPDATE alumni SET privacy_level = ?, updated_at = ? WHERE id = ?`,
		string(tier), time.Now().UTC().Truncate(time.Microsecond), id,
	)
	if err != nil {
		return fmt.Errorf("updating privacy of profile %d: %w", id, err)
	}

	return nil
}

func (r *sqlRepository) Update(id int64, u *ProfileUpdate) (*Record, error) {
	rec, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if u.PrivacyLevel != nil {
		if _, err := ParsePrivacyTier(string(*u.PrivacyLevel)); err != nil {
			return nil, err
		}
	}

	u.Apply(rec)

	if err := r.Save(rec); err != nil {
		return nil, err
	}

	return rec, nil
}
