// Package i2np implements the I2P Network Protocol (I2NP) for router-to-router communication.
//
// I2NP defines message types for:
//   - Network database operations (DatabaseStore, DatabaseLookup)
//   - Tunnel building (ShortTunnelBuild, VariableTunnelBuild)
//   - Data delivery (TunnelData, Data, DeliveryStatus)
//   - Garlic encryption (end-to-end encrypted message bundles)
//
// Message structure:
//   - Header: type, ID, expiration, size, checksum
//   - Payload: type-specific data
//
// Received garlic is ElGamal-decrypted (elg.PrivateKey.Decrypt) before
// DeserializeGarlic parses it; this package does not encrypt garlic.
// Tunnel build reply records use ChaCha20-Poly1305.
//
// DatabaseStore keeps its type byte as received; the byte is not decoded
// into RouterInfo or LeaseSet variants.
package i2np
