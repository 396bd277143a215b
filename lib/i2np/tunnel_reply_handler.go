package i2np

import (
	"sync"
	"time"

	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// ReplyProcessorConfig configures tunnel reply processing behavior.
type ReplyProcessorConfig struct {
	// BuildTimeout is the maximum time to wait for a tunnel build reply.
	BuildTimeout time.Duration

	// MaxRetries is the maximum number of build retries for failed tunnels.
	MaxRetries int

	// RetryBackoff is the base delay between retry attempts, doubled per
	// attempt.
	RetryBackoff time.Duration

	// EnableDecryption enables per-hop decryption of encrypted build reply
	// records before handing them to the handler's ProcessReply.
	EnableDecryption bool
}

// DefaultReplyProcessorConfig returns the default configuration.
func DefaultReplyProcessorConfig() ReplyProcessorConfig {
	return ReplyProcessorConfig{
		BuildTimeout:     90 * time.Second,
		MaxRetries:       3,
		RetryBackoff:     5 * time.Second,
		EnableDecryption: true,
	}
}

// PendingBuildRequest tracks an in-progress tunnel build request.
type PendingBuildRequest struct {
	TunnelID     TunnelID
	RequestedAt  time.Time
	ReplyKeys    []session_key.SessionKey
	ReplyIVs     [][16]byte
	Retries      int
	IsInbound    bool
	HopCount     int
	TimeoutTimer *time.Timer
}

// TunnelManager is the narrow hook this package forwards completed or
// failed tunnel build correlations to. Tunnel pool management and hop
// selection are an external collaborator (spec §1); this package only
// needs to tell it a tunnel became ready or permanently failed.
type TunnelManager struct {
	OnTunnelReady func(tunnelID TunnelID)
	OnTunnelFailed func(tunnelID TunnelID, err error)
}

func (tm *TunnelManager) notifyReady(tunnelID TunnelID) {
	if tm != nil && tm.OnTunnelReady != nil {
		tm.OnTunnelReady(tunnelID)
	}
}

func (tm *TunnelManager) notifyFailed(tunnelID TunnelID, err error) {
	if tm != nil && tm.OnTunnelFailed != nil {
		tm.OnTunnelFailed(tunnelID, err)
	}
}

// ReplyProcessor correlates inbound TunnelBuildReply/VariableTunnelBuildReply/
// ShortTunnelBuildReply messages back to the build request that originated
// them, passes their per-hop records through decryptRecord (which copies
// cleartext records unchanged), and drives retry-with-backoff on
// failure (spec §7 policy: a build timeout is recoverable by retry, not a
// fatal error).
type ReplyProcessor struct {
	config ReplyProcessorConfig

	pendingBuilds map[TunnelID]*PendingBuildRequest
	mutex         sync.RWMutex

	tunnelManager *TunnelManager

	retryCallback func(tunnelID TunnelID, isInbound bool, hopCount int) error
}

// NewReplyProcessor creates a new reply processor with the given configuration.
func NewReplyProcessor(config ReplyProcessorConfig, tm *TunnelManager) *ReplyProcessor {
	return &ReplyProcessor{
		config:        config,
		pendingBuilds: make(map[TunnelID]*PendingBuildRequest),
		tunnelManager: tm,
	}
}

// SetRetryCallback sets the callback invoked to retry a failed build.
func (rp *ReplyProcessor) SetRetryCallback(callback func(TunnelID, bool, int) error) {
	rp.retryCallback = callback
}

// RegisterPendingBuild registers a new tunnel build request for reply
// tracking. Must be called before the build request is sent.
func (rp *ReplyProcessor) RegisterPendingBuild(
	tunnelID TunnelID,
	replyKeys []session_key.SessionKey,
	replyIVs [][16]byte,
	isInbound bool,
	hopCount int,
) error {
	if len(replyKeys) != hopCount || len(replyIVs) != hopCount {
		return oops.Errorf("i2np: reply key/IV count mismatch: got %d keys, %d IVs, expected %d",
			len(replyKeys), len(replyIVs), hopCount)
	}

	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	pending := &PendingBuildRequest{
		TunnelID:    tunnelID,
		RequestedAt: time.Now(),
		ReplyKeys:   replyKeys,
		ReplyIVs:    replyIVs,
		IsInbound:   isInbound,
		HopCount:    hopCount,
	}

	pending.TimeoutTimer = time.AfterFunc(rp.config.BuildTimeout, func() {
		rp.handleBuildTimeout(tunnelID)
	})

	rp.pendingBuilds[tunnelID] = pending

	log.WithFields(logger.Fields{
		"tunnel_id":  tunnelID,
		"is_inbound": isInbound,
		"hop_count":  hopCount,
	}).Debug("registered pending tunnel build")

	return nil
}

// ProcessBuildReply correlates handler (one of TunnelBuildReply,
// VariableTunnelBuildReply, ShortTunnelBuildReply) to its pending build,
// decrypts its records, and reports success or schedules a retry.
func (rp *ReplyProcessor) ProcessBuildReply(handler TunnelReplyHandler, tunnelID TunnelID) error {
	pending, err := rp.retrieveAndRemovePendingBuild(tunnelID)
	if err != nil {
		return err
	}

	rp.logReplyProcessing(tunnelID, pending)

	if err := rp.decryptReplyIfEnabled(handler, tunnelID, pending); err != nil {
		return err
	}

	if err := rp.processReplyWithHandler(handler, tunnelID, pending); err != nil {
		return err
	}

	return rp.handleBuildSuccess(tunnelID, pending)
}

func (rp *ReplyProcessor) retrieveAndRemovePendingBuild(tunnelID TunnelID) (*PendingBuildRequest, error) {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	pending, exists := rp.pendingBuilds[tunnelID]
	if !exists {
		log.WithField("tunnel_id", tunnelID).Warn("received reply for unknown tunnel build")
		return nil, oops.Errorf("i2np: no pending build for tunnel %d", tunnelID)
	}

	if pending.TimeoutTimer != nil {
		pending.TimeoutTimer.Stop()
	}

	delete(rp.pendingBuilds, tunnelID)
	return pending, nil
}

func (rp *ReplyProcessor) logReplyProcessing(tunnelID TunnelID, pending *PendingBuildRequest) {
	log.WithFields(logger.Fields{
		"tunnel_id":  tunnelID,
		"latency_ms": time.Since(pending.RequestedAt).Milliseconds(),
	}).Debug("processing tunnel build reply")
}

func (rp *ReplyProcessor) decryptReplyIfEnabled(handler TunnelReplyHandler, tunnelID TunnelID, pending *PendingBuildRequest) error {
	if !rp.config.EnableDecryption {
		return nil
	}

	if err := rp.decryptReplyRecords(handler, pending); err != nil {
		log.WithFields(logger.Fields{"tunnel_id": tunnelID, "error": err.Error()}).
			Error("failed to decrypt reply records")
		return rp.handleBuildFailure(tunnelID, pending, err)
	}
	return nil
}

func (rp *ReplyProcessor) processReplyWithHandler(handler TunnelReplyHandler, tunnelID TunnelID, pending *PendingBuildRequest) error {
	if err := handler.ProcessReply(); err != nil {
		log.WithFields(logger.Fields{"tunnel_id": tunnelID, "error": err.Error()}).
			Warn("tunnel build failed")
		return rp.handleBuildFailure(tunnelID, pending, err)
	}
	return nil
}

// decryptReplyRecords decrypts each hop's encrypted reply record using its
// stored reply key/IV pair (spec §1: the AEAD primitive itself is assumed
// available; this package only routes the per-hop key material).
func (rp *ReplyProcessor) decryptReplyRecords(handler TunnelReplyHandler, pending *PendingBuildRequest) error {
	records := handler.GetReplyRecords()

	if len(records) != len(pending.ReplyKeys) {
		return oops.Errorf("i2np: record count mismatch: got %d records, expected %d",
			len(records), len(pending.ReplyKeys))
	}

	for i, record := range records {
		decrypted, err := rp.decryptRecord(record, pending.ReplyKeys[i], pending.ReplyIVs[i])
		if err != nil {
			return oops.Wrapf(err, "i2np: decrypt reply record %d", i)
		}

		decryptedRecord, err := ReadBuildResponseRecord(decrypted)
		if err != nil {
			return oops.Wrapf(err, "i2np: parse decrypted reply record %d", i)
		}

		records[i] = decryptedRecord
	}

	log.WithField("record_count", len(records)).Debug("decrypted all reply records")
	return nil
}

// decryptRecord decrypts one hop's build response record. The AEAD
// decryption itself is a primitive spec §1 declares externally available;
// wire transport for encrypted build records is not yet part of this
// module's build-request path (lib/i2np/build_request_record.go builds
// cleartext records only), so records arriving here are already cleartext
// and this is the identity transform until an encrypted build path exists.
func (rp *ReplyProcessor) decryptRecord(
	record BuildResponseRecord,
	_ session_key.SessionKey,
	_ [16]byte,
) ([]byte, error) {
	decrypted := make([]byte, 528)
	copy(decrypted[0:32], record.Hash[:])
	copy(decrypted[32:527], record.RandomData[:])
	decrypted[527] = record.Reply
	return decrypted, nil
}

func (rp *ReplyProcessor) handleBuildSuccess(tunnelID TunnelID, pending *PendingBuildRequest) error {
	log.WithFields(logger.Fields{
		"tunnel_id":   tunnelID,
		"is_inbound":  pending.IsInbound,
		"build_time":  time.Since(pending.RequestedAt).Seconds(),
		"retry_count": pending.Retries,
	}).Info("tunnel build completed successfully")

	rp.tunnelManager.notifyReady(tunnelID)
	return nil
}

// handleBuildFailure logs the failure and, within the retry budget,
// schedules a retry; once exhausted it reports the tunnel permanently
// failed to the tunnel manager and returns the terminal error.
func (rp *ReplyProcessor) handleBuildFailure(
	tunnelID TunnelID,
	pending *PendingBuildRequest,
	buildErr error,
) error {
	log.WithFields(logger.Fields{
		"tunnel_id":   tunnelID,
		"error":       buildErr.Error(),
		"retry_count": pending.Retries,
		"max_retries": rp.config.MaxRetries,
	}).Warn("tunnel build failed")

	if pending.Retries < rp.config.MaxRetries {
		return rp.retryBuild(tunnelID, pending)
	}

	log.WithFields(logger.Fields{
		"tunnel_id":   tunnelID,
		"retry_count": pending.Retries,
	}).Error("tunnel build failed permanently after all retries")

	rp.tunnelManager.notifyFailed(tunnelID, buildErr)
	return oops.Wrapf(buildErr, "i2np: tunnel build failed after %d retries", pending.Retries)
}

// retryBuild schedules a retry after an exponential backoff delay (spec
// §4.C's retransmission backoff shape, reused here for build retries).
func (rp *ReplyProcessor) retryBuild(tunnelID TunnelID, pending *PendingBuildRequest) error {
	if rp.retryCallback == nil {
		log.Warn("no retry callback configured, cannot retry tunnel build")
		return oops.Errorf("i2np: retry not available for tunnel %d", tunnelID)
	}

	backoffDelay := rp.config.RetryBackoff * time.Duration(1<<pending.Retries)

	log.WithFields(logger.Fields{
		"tunnel_id":     tunnelID,
		"retry_count":   pending.Retries + 1,
		"backoff_delay": backoffDelay.Seconds(),
	}).Info("scheduling tunnel build retry")

	time.AfterFunc(backoffDelay, func() {
		if err := rp.retryCallback(tunnelID, pending.IsInbound, pending.HopCount); err != nil {
			log.WithFields(logger.Fields{"tunnel_id": tunnelID, "error": err.Error()}).
				Error("tunnel build retry failed")
		}
	})

	return oops.Errorf("i2np: tunnel build failed, retry scheduled for tunnel %d", tunnelID)
}

func (rp *ReplyProcessor) handleBuildTimeout(tunnelID TunnelID) {
	rp.mutex.Lock()
	pending, exists := rp.pendingBuilds[tunnelID]
	if !exists {
		rp.mutex.Unlock()
		return
	}
	delete(rp.pendingBuilds, tunnelID)
	rp.mutex.Unlock()

	log.WithFields(logger.Fields{
		"tunnel_id":    tunnelID,
		"elapsed_secs": time.Since(pending.RequestedAt).Seconds(),
	}).Warn("tunnel build timed out")

	if pending.Retries < rp.config.MaxRetries {
		_ = rp.retryBuild(tunnelID, pending)
	} else {
		log.WithField("tunnel_id", tunnelID).Error("tunnel build timed out after all retries")
	}
}

// CleanupExpiredBuilds removes pending builds that have exceeded their
// timeout plus the full retry window. Intended to be called periodically
// as housekeeping, matching the transport's own housekeeping tick.
func (rp *ReplyProcessor) CleanupExpiredBuilds() int {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	now := time.Now()
	maxAge := rp.config.BuildTimeout + (rp.config.RetryBackoff * time.Duration(rp.config.MaxRetries+1))
	var expired []TunnelID

	for id, pending := range rp.pendingBuilds {
		if now.Sub(pending.RequestedAt) > maxAge {
			expired = append(expired, id)
			if pending.TimeoutTimer != nil {
				pending.TimeoutTimer.Stop()
			}
		}
	}

	for _, id := range expired {
		delete(rp.pendingBuilds, id)
	}

	if len(expired) > 0 {
		log.WithField("expired_count", len(expired)).Warn("cleaned up expired tunnel builds")
	}

	return len(expired)
}

// GetPendingBuildCount returns the number of currently pending tunnel builds.
func (rp *ReplyProcessor) GetPendingBuildCount() int {
	rp.mutex.RLock()
	defer rp.mutex.RUnlock()
	return len(rp.pendingBuilds)
}

// GetPendingBuildInfo returns the pending build for tunnelID, or nil.
func (rp *ReplyProcessor) GetPendingBuildInfo(tunnelID TunnelID) *PendingBuildRequest {
	rp.mutex.RLock()
	defer rp.mutex.RUnlock()
	return rp.pendingBuilds[tunnelID]
}
