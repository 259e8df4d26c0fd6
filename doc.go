/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

//Package rpmcpio is a streaming reader for RPM package payloads. It parses
//the RPM lead, signature header and main header, then hands out an iterator
//over the entries of the embedded "070701" cpio archive, reconciling each
//entry against the filelist recorded in the main header and detecting
//hardlink sets along the way.
//
//Package signature verification is explicitly not a goal: signature blocks
//are accepted structurally but never checked.
package rpmcpio
