/*
The package sds decodes and encodes the SDS-TL user data that is carried in the user defined data-4
of the CMCE D-SDS-DATA and U-SDS-DATA PDUs, and the pre-coded status values of D-STATUS and U-STATUS.
This implementation is solely based on:
  [AI]  ETSI TS 100 392-2 V3.9.2 (2020-06)

The most relevant chapters in [AI] are 29 (SDS-TL Protocol) and 14 (CMCE Protocol).

Abbreviations:
PDU: Protocol Data Unit
SDU: Service Data Unit
UDH: User Data Header
SFC: Store/forward control

All PDUs are read from and written into a bitbuf.Buffer. Errors match the error set of the pdu package.
*/
package sds
