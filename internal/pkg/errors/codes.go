package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidViewport = New(
		"INVALID_VIEWPORT",
		"Invalid viewport bounds",
		http.StatusBadRequest,
	)

	ErrInvalidZoom = New(
		"INVALID_ZOOM",
		"Invalid zoom level",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrEntityNotFound = New(
		"ENTITY_NOT_FOUND",
		"Entity not found",
		http.StatusNotFound,
	)

	ErrPositionAcquisitionFailed = New(
		"POSITION_ACQUISITION_FAILED",
		"Failed to acquire the first position fix",
		http.StatusServiceUnavailable,
	)

	ErrTrackerAlreadyStarted = New(
		"TRACKER_ALREADY_STARTED",
		"Tracker is already started",
		http.StatusConflict,
	)

	ErrTrackerNotTracking = New(
		"TRACKER_NOT_TRACKING",
		"Tracker is not in the tracking state",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
