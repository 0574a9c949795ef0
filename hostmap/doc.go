// Package hostmap provides handles to key/value maps living in the host.
//
// A map is either borrowed or owned:
//
//	m, err := hostmap.Get(env, "events")          // *Borrowed, host owns it
//	n, err := hostmap.New(env, hostmap.Spec{...}) // *Owned, caller releases it
//	defer n.Close()
//
// Both implement Map. Closing a borrowed map is a no-op. Closing an owned
// map releases the host resource once; any later operation on it fails
// with an invalid_state error.
//
// Keys and values are binary encoded in little endian with encoding/binary.
// Structs must spell out their padding (blank fields) so that the layout
// matches what the host side expects. A []byte is passed verbatim.
package hostmap
