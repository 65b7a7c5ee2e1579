package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ── Plats ──

const platColumns = `id, name, description, base_price, available, available_for_delivery,
	speciality, includes_sauce, sauce_price, sort_order, image, created_at, updated_at`

func scanPlat(row interface{ Scan(dest ...any) error }) (Plat, error) {
	var p Plat
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.BasePrice, &p.Available,
		&p.AvailableForDelivery, &p.Speciality, &p.IncludesSauce,
		&p.SaucePrice, &p.SortOrder, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const listPlats = `SELECT ` + platColumns + ` FROM plats ORDER BY sort_order, name`

func (q *Queries) ListPlats(ctx context.Context) ([]Plat, error) {
	rows, err := q.db.Query(ctx, listPlats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Plat
	for rows.Next() {
		p, err := scanPlat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getPlat = `SELECT ` + platColumns + ` FROM plats WHERE id = $1`

func (q *Queries) GetPlat(ctx context.Context, id uuid.UUID) (Plat, error) {
	return scanPlat(q.db.QueryRow(ctx, getPlat, id))
}

type CreatePlatParams struct {
	Name                 string
	Description          pgtype.Text
	BasePrice            pgtype.Numeric
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
	IncludesSauce        bool
	SaucePrice           pgtype.Numeric
	SortOrder            int32
	Image                pgtype.Text
}

const createPlat = `INSERT INTO plats (name, description, base_price, available, available_for_delivery,
	speciality, includes_sauce, sauce_price, sort_order, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + platColumns

func (q *Queries) CreatePlat(ctx context.Context, arg CreatePlatParams) (Plat, error) {
	return scanPlat(q.db.QueryRow(ctx, createPlat,
		arg.Name, arg.Description, arg.BasePrice, arg.Available,
		arg.AvailableForDelivery, arg.Speciality, arg.IncludesSauce,
		arg.SaucePrice, arg.SortOrder, arg.Image,
	))
}

type UpdatePlatParams struct {
	ID                   uuid.UUID
	Name                 string
	Description          pgtype.Text
	BasePrice            pgtype.Numeric
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
	IncludesSauce        bool
	SaucePrice           pgtype.Numeric
	SortOrder            int32
	Image                pgtype.Text
}

const updatePlat = `UPDATE plats
SET name = $2, description = $3, base_price = $4, available = $5,
	available_for_delivery = $6, speciality = $7, includes_sauce = $8,
	sauce_price = $9, sort_order = $10, image = $11, updated_at = now()
WHERE id = $1
RETURNING ` + platColumns

func (q *Queries) UpdatePlat(ctx context.Context, arg UpdatePlatParams) (Plat, error) {
	return scanPlat(q.db.QueryRow(ctx, updatePlat,
		arg.ID, arg.Name, arg.Description, arg.BasePrice, arg.Available,
		arg.AvailableForDelivery, arg.Speciality, arg.IncludesSauce,
		arg.SaucePrice, arg.SortOrder, arg.Image,
	))
}

const deletePlat = `DELETE FROM plats WHERE id = $1 RETURNING id`

func (q *Queries) DeletePlat(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deletePlat, id).Scan(&deleted)
	return deleted, err
}

// ── Plat versions ──

const versionColumns = `id, plat_id, size, extra_price, image`

func scanVersion(row interface{ Scan(dest ...any) error }) (PlatVersion, error) {
	var v PlatVersion
	err := row.Scan(&v.ID, &v.PlatID, &v.Size, &v.ExtraPrice, &v.Image)
	return v, err
}

const listVersionsByPlat = `SELECT ` + versionColumns + ` FROM plat_versions WHERE plat_id = $1 ORDER BY extra_price, size`

func (q *Queries) ListVersionsByPlat(ctx context.Context, platID uuid.UUID) ([]PlatVersion, error) {
	rows, err := q.db.Query(ctx, listVersionsByPlat, platID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlatVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

const countVersionsByPlat = `SELECT count(*) FROM plat_versions WHERE plat_id = $1`

func (q *Queries) CountVersionsByPlat(ctx context.Context, platID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countVersionsByPlat, platID).Scan(&n)
	return n, err
}

const getVersion = `SELECT ` + versionColumns + ` FROM plat_versions WHERE id = $1`

func (q *Queries) GetVersion(ctx context.Context, id uuid.UUID) (PlatVersion, error) {
	return scanVersion(q.db.QueryRow(ctx, getVersion, id))
}

type CreateVersionParams struct {
	PlatID     uuid.UUID
	Size       string
	ExtraPrice pgtype.Numeric
	Image      pgtype.Text
}

const createVersion = `INSERT INTO plat_versions (plat_id, size, extra_price, image)
VALUES ($1, $2, $3, $4)
RETURNING ` + versionColumns

func (q *Queries) CreateVersion(ctx context.Context, arg CreateVersionParams) (PlatVersion, error) {
	return scanVersion(q.db.QueryRow(ctx, createVersion, arg.PlatID, arg.Size, arg.ExtraPrice, arg.Image))
}

type UpdateVersionParams struct {
	ID         uuid.UUID
	PlatID     uuid.UUID
	Size       string
	ExtraPrice pgtype.Numeric
	Image      pgtype.Text
}

const updateVersion = `UPDATE plat_versions
SET size = $3, extra_price = $4, image = $5
WHERE id = $1 AND plat_id = $2
RETURNING ` + versionColumns

func (q *Queries) UpdateVersion(ctx context.Context, arg UpdateVersionParams) (PlatVersion, error) {
	return scanVersion(q.db.QueryRow(ctx, updateVersion, arg.ID, arg.PlatID, arg.Size, arg.ExtraPrice, arg.Image))
}

type DeleteVersionParams struct {
	ID     uuid.UUID
	PlatID uuid.UUID
}

const deleteVersion = `DELETE FROM plat_versions WHERE id = $1 AND plat_id = $2 RETURNING id`

func (q *Queries) DeleteVersion(ctx context.Context, arg DeleteVersionParams) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteVersion, arg.ID, arg.PlatID).Scan(&deleted)
	return deleted, err
}

// ── Sauces ──

const sauceColumns = `id, name, price, description, available, image`

func scanSauce(row interface{ Scan(dest ...any) error }) (Sauce, error) {
	var s Sauce
	err := row.Scan(&s.ID, &s.Name, &s.Price, &s.Description, &s.Available, &s.Image)
	return s, err
}

const listSauces = `SELECT ` + sauceColumns + ` FROM sauces ORDER BY name`

func (q *Queries) ListSauces(ctx context.Context) ([]Sauce, error) {
	rows, err := q.db.Query(ctx, listSauces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sauce
	for rows.Next() {
		s, err := scanSauce(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const getSauce = `SELECT ` + sauceColumns + ` FROM sauces WHERE id = $1`

func (q *Queries) GetSauce(ctx context.Context, id uuid.UUID) (Sauce, error) {
	return scanSauce(q.db.QueryRow(ctx, getSauce, id))
}

type CreateSauceParams struct {
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Available   bool
	Image       pgtype.Text
}

const createSauce = `INSERT INTO sauces (name, price, description, available, image)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + sauceColumns

func (q *Queries) CreateSauce(ctx context.Context, arg CreateSauceParams) (Sauce, error) {
	return scanSauce(q.db.QueryRow(ctx, createSauce, arg.Name, arg.Price, arg.Description, arg.Available, arg.Image))
}

type UpdateSauceParams struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Available   bool
	Image       pgtype.Text
}

const updateSauce = `UPDATE sauces
SET name = $2, price = $3, description = $4, available = $5, image = $6
WHERE id = $1
RETURNING ` + sauceColumns

func (q *Queries) UpdateSauce(ctx context.Context, arg UpdateSauceParams) (Sauce, error) {
	return scanSauce(q.db.QueryRow(ctx, updateSauce, arg.ID, arg.Name, arg.Price, arg.Description, arg.Available, arg.Image))
}

const deleteSauce = `DELETE FROM sauces WHERE id = $1 RETURNING id`

func (q *Queries) DeleteSauce(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteSauce, id).Scan(&deleted)
	return deleted, err
}

// ── Extras ──

const extraColumns = `id, name, price, description, available, available_for_delivery, speciality`

func scanExtra(row interface{ Scan(dest ...any) error }) (Extra, error) {
	var e Extra
	err := row.Scan(&e.ID, &e.Name, &e.Price, &e.Description, &e.Available, &e.AvailableForDelivery, &e.Speciality)
	return e, err
}

const listExtras = `SELECT ` + extraColumns + ` FROM extras ORDER BY name`

func (q *Queries) ListExtras(ctx context.Context) ([]Extra, error) {
	rows, err := q.db.Query(ctx, listExtras)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Extra
	for rows.Next() {
		e, err := scanExtra(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getExtra = `SELECT ` + extraColumns + ` FROM extras WHERE id = $1`

func (q *Queries) GetExtra(ctx context.Context, id uuid.UUID) (Extra, error) {
	return scanExtra(q.db.QueryRow(ctx, getExtra, id))
}

type CreateExtraParams struct {
	Name                 string
	Price                pgtype.Numeric
	Description          pgtype.Text
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
}

const createExtra = `INSERT INTO extras (name, price, description, available, available_for_delivery, speciality)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + extraColumns

func (q *Queries) CreateExtra(ctx context.Context, arg CreateExtraParams) (Extra, error) {
	return scanExtra(q.db.QueryRow(ctx, createExtra,
		arg.Name, arg.Price, arg.Description, arg.Available, arg.AvailableForDelivery, arg.Speciality))
}

type UpdateExtraParams struct {
	ID                   uuid.UUID
	Name                 string
	Price                pgtype.Numeric
	Description          pgtype.Text
	Available            bool
	AvailableForDelivery bool
	Speciality           bool
}

const updateExtra = `UPDATE extras
SET name = $2, price = $3, description = $4, available = $5, available_for_delivery = $6, speciality = $7
WHERE id = $1
RETURNING ` + extraColumns

func (q *Queries) UpdateExtra(ctx context.Context, arg UpdateExtraParams) (Extra, error) {
	return scanExtra(q.db.QueryRow(ctx, updateExtra,
		arg.ID, arg.Name, arg.Price, arg.Description, arg.Available, arg.AvailableForDelivery, arg.Speciality))
}

const deleteExtra = `DELETE FROM extras WHERE id = $1 RETURNING id`

func (q *Queries) DeleteExtra(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteExtra, id).Scan(&deleted)
	return deleted, err
}

// ── Ingredients ──

const ingredientColumns = `id, name, description, allergen, image`

func scanIngredient(row interface{ Scan(dest ...any) error }) (Ingredient, error) {
	var i Ingredient
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Allergen, &i.Image)
	return i, err
}

const listIngredients = `SELECT ` + ingredientColumns + ` FROM ingredients ORDER BY name`

func (q *Queries) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type CreateIngredientParams struct {
	Name        string
	Description pgtype.Text
	Allergen    bool
	Image       pgtype.Text
}

const createIngredient = `INSERT INTO ingredients (name, description, allergen, image)
VALUES ($1, $2, $3, $4)
RETURNING ` + ingredientColumns

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	return scanIngredient(q.db.QueryRow(ctx, createIngredient, arg.Name, arg.Description, arg.Allergen, arg.Image))
}

type UpdateIngredientParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Allergen    bool
	Image       pgtype.Text
}

const updateIngredient = `UPDATE ingredients
SET name = $2, description = $3, allergen = $4, image = $5
WHERE id = $1
RETURNING ` + ingredientColumns

func (q *Queries) UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error) {
	return scanIngredient(q.db.QueryRow(ctx, updateIngredient, arg.ID, arg.Name, arg.Description, arg.Allergen, arg.Image))
}

const deleteIngredient = `DELETE FROM ingredients WHERE id = $1 RETURNING id`

func (q *Queries) DeleteIngredient(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteIngredient, id).Scan(&deleted)
	return deleted, err
}

// ── Plat/ingredient composition ──

const listPlatIngredients = `SELECT pi.plat_id, pi.ingredient_id, i.name, i.allergen, pi.removable
FROM plat_ingredients pi
JOIN ingredients i ON i.id = pi.ingredient_id
WHERE pi.plat_id = $1
ORDER BY i.name`

func (q *Queries) ListPlatIngredients(ctx context.Context, platID uuid.UUID) ([]PlatIngredientRow, error) {
	rows, err := q.db.Query(ctx, listPlatIngredients, platID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlatIngredientRow
	for rows.Next() {
		var r PlatIngredientRow
		if err := rows.Scan(&r.PlatID, &r.IngredientID, &r.Name, &r.Allergen, &r.Removable); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type GetPlatIngredientParams struct {
	PlatID       uuid.UUID
	IngredientID uuid.UUID
}

const getPlatIngredient = `SELECT pi.plat_id, pi.ingredient_id, i.name, i.allergen, pi.removable
FROM plat_ingredients pi
JOIN ingredients i ON i.id = pi.ingredient_id
WHERE pi.plat_id = $1 AND pi.ingredient_id = $2`

func (q *Queries) GetPlatIngredient(ctx context.Context, arg GetPlatIngredientParams) (PlatIngredientRow, error) {
	var r PlatIngredientRow
	err := q.db.QueryRow(ctx, getPlatIngredient, arg.PlatID, arg.IngredientID).
		Scan(&r.PlatID, &r.IngredientID, &r.Name, &r.Allergen, &r.Removable)
	return r, err
}

type LinkPlatIngredientParams struct {
	PlatID       uuid.UUID
	IngredientID uuid.UUID
	Removable    bool
}

const linkPlatIngredient = `INSERT INTO plat_ingredients (plat_id, ingredient_id, removable)
VALUES ($1, $2, $3)
ON CONFLICT (plat_id, ingredient_id) DO UPDATE SET removable = EXCLUDED.removable`

func (q *Queries) LinkPlatIngredient(ctx context.Context, arg LinkPlatIngredientParams) error {
	_, err := q.db.Exec(ctx, linkPlatIngredient, arg.PlatID, arg.IngredientID, arg.Removable)
	return err
}

type UnlinkPlatIngredientParams struct {
	PlatID       uuid.UUID
	IngredientID uuid.UUID
}

const unlinkPlatIngredient = `DELETE FROM plat_ingredients WHERE plat_id = $1 AND ingredient_id = $2`

func (q *Queries) UnlinkPlatIngredient(ctx context.Context, arg UnlinkPlatIngredientParams) error {
	_, err := q.db.Exec(ctx, unlinkPlatIngredient, arg.PlatID, arg.IngredientID)
	return err
}

// ── Tags ──

const tagColumns = `id, name, searchable, sort_order`

func scanTag(row interface{ Scan(dest ...any) error }) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.Searchable, &t.SortOrder)
	return t, err
}

const listTags = `SELECT ` + tagColumns + ` FROM tags ORDER BY sort_order, name`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	return q.queryTags(ctx, listTags)
}

const listSearchableTags = `SELECT ` + tagColumns + ` FROM tags WHERE searchable ORDER BY sort_order, name`

func (q *Queries) ListSearchableTags(ctx context.Context) ([]Tag, error) {
	return q.queryTags(ctx, listSearchableTags)
}

const listTagsByPlat = `SELECT t.id, t.name, t.searchable, t.sort_order
FROM tags t
JOIN plat_tags pt ON pt.tag_id = t.id
WHERE pt.plat_id = $1
ORDER BY t.sort_order, t.name`

func (q *Queries) ListTagsByPlat(ctx context.Context, platID uuid.UUID) ([]Tag, error) {
	return q.queryTags(ctx, listTagsByPlat, platID)
}

func (q *Queries) queryTags(ctx context.Context, sql string, args ...any) ([]Tag, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type LinkPlatTagParams struct {
	PlatID uuid.UUID
	TagID  uuid.UUID
}

const linkPlatTag = `INSERT INTO plat_tags (plat_id, tag_id)
VALUES ($1, $2)
ON CONFLICT (plat_id, tag_id) DO NOTHING`

func (q *Queries) LinkPlatTag(ctx context.Context, arg LinkPlatTagParams) error {
	_, err := q.db.Exec(ctx, linkPlatTag, arg.PlatID, arg.TagID)
	return err
}

type UnlinkPlatTagParams struct {
	PlatID uuid.UUID
	TagID  uuid.UUID
}

const unlinkPlatTag = `DELETE FROM plat_tags WHERE plat_id = $1 AND tag_id = $2`

func (q *Queries) UnlinkPlatTag(ctx context.Context, arg UnlinkPlatTagParams) error {
	_, err := q.db.Exec(ctx, unlinkPlatTag, arg.PlatID, arg.TagID)
	return err
}

const listTagsByExtra = `SELECT t.id, t.name, t.searchable, t.sort_order
FROM tags t
JOIN extra_tags et ON et.tag_id = t.id
WHERE et.extra_id = $1
ORDER BY t.sort_order, t.name`

func (q *Queries) ListTagsByExtra(ctx context.Context, extraID uuid.UUID) ([]Tag, error) {
	return q.queryTags(ctx, listTagsByExtra, extraID)
}

type LinkExtraTagParams struct {
	ExtraID uuid.UUID
	TagID   uuid.UUID
}

const linkExtraTag = `INSERT INTO extra_tags (extra_id, tag_id)
VALUES ($1, $2)
ON CONFLICT (extra_id, tag_id) DO NOTHING`

func (q *Queries) LinkExtraTag(ctx context.Context, arg LinkExtraTagParams) error {
	_, err := q.db.Exec(ctx, linkExtraTag, arg.ExtraID, arg.TagID)
	return err
}

type UnlinkExtraTagParams struct {
	ExtraID uuid.UUID
	TagID   uuid.UUID
}

const unlinkExtraTag = `DELETE FROM extra_tags WHERE extra_id = $1 AND tag_id = $2`

func (q *Queries) UnlinkExtraTag(ctx context.Context, arg UnlinkExtraTagParams) error {
	_, err := q.db.Exec(ctx, unlinkExtraTag, arg.ExtraID, arg.TagID)
	return err
}

type CreateTagParams struct {
	Name       string
	Searchable bool
	SortOrder  int32
}

const createTag = `INSERT INTO tags (name, searchable, sort_order)
VALUES ($1, $2, $3)
RETURNING ` + tagColumns

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, createTag, arg.Name, arg.Searchable, arg.SortOrder))
}

type UpdateTagParams struct {
	ID         uuid.UUID
	Name       string
	Searchable bool
	SortOrder  int32
}

const updateTag = `UPDATE tags
SET name = $2, searchable = $3, sort_order = $4
WHERE id = $1
RETURNING ` + tagColumns

func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, updateTag, arg.ID, arg.Name, arg.Searchable, arg.SortOrder))
}

const deleteTag = `DELETE FROM tags WHERE id = $1 RETURNING id`

func (q *Queries) DeleteTag(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteTag, id).Scan(&deleted)
	return deleted, err
}
