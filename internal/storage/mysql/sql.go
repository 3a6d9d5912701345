package mysql

// -----------------------------------------------------------------------------
// REFERENCE DATA
// -----------------------------------------------------------------------------

const upsertHotelSQL = `
INSERT INTO hotels (id, name, currency, doc)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name     = VALUES(name),
  currency = VALUES(currency),
  doc      = VALUES(doc)
`

const upsertRoomTypeSQL = `
INSERT INTO room_types (id, hotel_id, code, doc)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id = VALUES(hotel_id),
  code     = VALUES(code),
  doc      = VALUES(doc)
`

const upsertMarketSQL = `
INSERT INTO markets (id, hotel_id, code, doc)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id = VALUES(hotel_id),
  code     = VALUES(code),
  doc      = VALUES(doc)
`

const upsertSeasonSQL = `
INSERT INTO seasons (id, hotel_id, market_id, priority, doc)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id  = VALUES(hotel_id),
  market_id = VALUES(market_id),
  priority  = VALUES(priority),
  doc       = VALUES(doc)
`

const upsertCampaignSQL = `
INSERT INTO campaigns (id, hotel_id, status, stay_start, stay_end, doc)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id   = VALUES(hotel_id),
  status     = VALUES(status),
  stay_start = VALUES(stay_start),
  stay_end   = VALUES(stay_end),
  doc        = VALUES(doc)
`

const getHotelSQL = `SELECT doc FROM hotels WHERE id = ?`
const getRoomTypeSQL = `SELECT doc FROM room_types WHERE id = ?`
const getMarketSQL = `SELECT doc FROM markets WHERE id = ?`

const listSeasonsSQL = `
SELECT doc FROM seasons
WHERE hotel_id = ? AND market_id = ?
ORDER BY priority DESC, id
`

// Open-ended stay windows are stored as NULL bounds.
const listCampaignsSQL = `
SELECT doc FROM campaigns
WHERE hotel_id = ?
  AND (stay_start IS NULL OR stay_start <= ?)
  AND (stay_end IS NULL OR stay_end >= ?)
ORDER BY id
`

// -----------------------------------------------------------------------------
// RATES
// -----------------------------------------------------------------------------

const rateColumns = `
  id, hotel_id, room_type_id, meal_plan_id, market_id, date, currency, pricing_type, multipliers,
  price_per_night, single_supplement, extra_adult, extra_child, extra_infant,
  child_order_pricing, child_age_pricing, occupancy_pricing,
  allotment, sold, min_stay, max_stay, stop_sale, single_stop, release_days,
  closed_to_arrival, closed_to_departure`

const listRatesSQL = `SELECT` + rateColumns + `
FROM rates
WHERE hotel_id = ? AND room_type_id = ? AND meal_plan_id = ? AND market_id = ?
  AND date >= ? AND date < ?
ORDER BY date
`

const getRateSQL = `SELECT` + rateColumns + `
FROM rates
WHERE hotel_id = ? AND room_type_id = ? AND meal_plan_id = ? AND market_id = ? AND date = ?
`

// 24 params per row; id and sold are never written by imports.
const insertRatesPrefix = `INSERT INTO rates
  (hotel_id, room_type_id, meal_plan_id, market_id, date, currency, pricing_type, multipliers,
   price_per_night, single_supplement, extra_adult, extra_child, extra_infant,
   child_order_pricing, child_age_pricing, occupancy_pricing,
   allotment, min_stay, max_stay, stop_sale, single_stop, release_days,
   closed_to_arrival, closed_to_departure)
VALUES `

const rateRowPlaceholder = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

const insertRatesOnDup = `
ON DUPLICATE KEY UPDATE
  currency            = VALUES(currency),
  pricing_type        = VALUES(pricing_type),
  multipliers         = VALUES(multipliers),
  price_per_night     = VALUES(price_per_night),
  single_supplement   = VALUES(single_supplement),
  extra_adult         = VALUES(extra_adult),
  extra_child         = VALUES(extra_child),
  extra_infant        = VALUES(extra_infant),
  child_order_pricing = VALUES(child_order_pricing),
  child_age_pricing   = VALUES(child_age_pricing),
  occupancy_pricing   = VALUES(occupancy_pricing),
  allotment           = VALUES(allotment),
  min_stay            = VALUES(min_stay),
  max_stay            = VALUES(max_stay),
  stop_sale           = VALUES(stop_sale),
  single_stop         = VALUES(single_stop),
  release_days        = VALUES(release_days),
  closed_to_arrival   = VALUES(closed_to_arrival),
  closed_to_departure = VALUES(closed_to_departure)
`

// -----------------------------------------------------------------------------
// ALLOTMENT
// -----------------------------------------------------------------------------

// The availability check and the increment happen in one statement, so two
// concurrent reservations can never both pass the check.
const incrementSoldSQL = `
UPDATE rates SET sold = sold + ?
WHERE hotel_id = ? AND room_type_id = ? AND meal_plan_id = ? AND market_id = ? AND date = ?
  AND sold + ? <= allotment
`

const decrementSoldSQL = `
UPDATE rates SET sold = GREATEST(sold - ?, 0)
WHERE hotel_id = ? AND room_type_id = ? AND meal_plan_id = ? AND market_id = ? AND date = ?
`
