package mysql

const upsertLocationSQL = `
INSERT INTO locations
  (location_key, city, state, display_name, area_served, seo)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  city         = VALUES(city),
  state        = VALUES(state),
  display_name = VALUES(display_name),
  area_served  = VALUES(area_served),
  seo          = VALUES(seo),
  updated_at   = CURRENT_TIMESTAMP
`

const upsertAppraiserSQL = `
INSERT INTO appraisers
  (id, location_key, slug, name, city, state, phone, website, image_url, rating, review_count, in_service, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  location_key = VALUES(location_key),
  slug         = VALUES(slug),
  name         = VALUES(name),
  city         = VALUES(city),
  state        = VALUES(state),
  phone        = VALUES(phone),
  website      = VALUES(website),
  image_url    = VALUES(image_url),
  rating       = VALUES(rating),
  review_count = VALUES(review_count),
  in_service   = VALUES(in_service),
  raw          = VALUES(raw),
  updated_at   = CURRENT_TIMESTAMP
`

const deleteReviewsSQL = `DELETE FROM reviews WHERE appraiser_id = ?`

const insertReviewsPrefix = "INSERT INTO reviews\n  (appraiser_id, author, rating, review_date, content)\nVALUES "

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const appraiserColumns = `
  a.id,
  a.location_key,
  a.slug,
  a.name,
  a.city,
  a.state,
  a.phone,
  a.website,
  a.image_url,
  a.rating,
  a.review_count,
  a.in_service,
  a.raw
`

const getAppraiserSQL = `SELECT` + appraiserColumns + `FROM appraisers a WHERE a.id = ?`

// Highest rated first; unrated rows sort last.
const listAppraisersSQL = `SELECT` + appraiserColumns + `FROM appraisers a
WHERE a.location_key = ?
ORDER BY a.rating IS NULL, a.rating DESC, a.id
LIMIT ?`
