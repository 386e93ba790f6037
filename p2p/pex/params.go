package pex

import "time"

// size under which the book keeps asking for more addresses.
const _NEED_ADDRESS_THRESHOLD = 1000

// interval used to snapshot the book to the db for future use.
const _DUMP_ADDRESS_INTERVAL = time.Minute * 2

// max addresses in each old address bucket.
const _OLD_BUCKET_SIZE = 64

// buckets we split old addresses over.
const _OLD_BUCKET_COUNT = 64

// max addresses in each new address bucket.
const _NEW_BUCKET_SIZE = 64

// buckets that we spread new addresses over.
const _NEW_BUCKET_COUNT = 256

// old buckets over which an address group will be spread.
const _OLD_BUCKETS_PER_GROUP = 4

// new buckets over which a source address group will be spread.
const _NEW_BUCKETS_PER_GROUP = 32

// buckets a frequently seen new address may end up in.
const _MAX_NEW_BUCKETS_PER_ADDRESS = 4

// days before which we assume an address has vanished
// if we have not seen it announced in that long.
const _NUM_MISSING_DAYS = 7

// tries without a single success before we assume an address is bad.
const _NUM_RETRIES = 3

// max failures we will accept without a success before considering an address bad.
const _MAX_FAILURES = 10

// days since the last success before we will consider evicting an address.
const _MIN_BAD_DAYS = 7

// % of total addresses known returned by GetSelection.
const _GET_SELECTION_PERCENT = 23

// min addresses that must be returned by GetSelection. Useful for bootstrapping.
const _MIN_GET_SELECTION = 32

// max addresses returned by GetSelection.
const _MAX_GET_SELECTION = 250
